package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	domainquota "github.com/jhoicas/lavanderia-enterprise-api/internal/domain/quota"
)

func TestGenerateStatementPDF_ProducePDF(t *testing.T) {
	limit := 10_000
	period := domainquota.PeriodFor(time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC), time.UTC)
	st := appbilling.Statement{
		Account: &entity.EnterpriseAccount{
			TenantID:         "tnt_0123456789abcdef",
			CompanyName:      "Lavandería Central",
			SubscriptionPlan: entity.PlanStartup,
			BillingEmail:     "pagos@central.co",
			APIKeyPrefix:     "lvk_abcdef01",
			MonthlyQuota:     &limit,
		},
		Usage: quota.Usage{
			Used:      2500,
			Quota:     &limit,
			Remaining: domainquota.Remaining(2500, &limit),
			Period:    period,
		},
		GeneratedAt: time.Date(2026, time.October, 1, 8, 0, 0, 0, time.UTC),
	}

	out, err := NewMarotoPDFGenerator().GenerateStatementPDF(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateStatementPDF_SinCuenta_RetornaError(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateStatementPDF(context.Background(), appbilling.Statement{})
	assert.Error(t, err)
}

func TestUsageLines_CuotaIlimitada(t *testing.T) {
	lines := usageLines(appbilling.Statement{Usage: quota.Usage{Used: 42}})
	assert.Equal(t, "Ilimitada", lines[2][1])
	assert.Equal(t, "-", lines[3][1])
	assert.Equal(t, "-", lines[4][1])
}

func TestUsageLines_PorcentajeDeConsumo(t *testing.T) {
	limit := 200
	lines := usageLines(appbilling.Statement{Usage: quota.Usage{
		Used: 50, Quota: &limit, Remaining: domainquota.Remaining(50, &limit),
	}})
	assert.Equal(t, "150", lines[3][1])
	assert.Equal(t, "25.0%", lines[4][1])
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "25.000", formatNumber(25000))
	assert.Equal(t, "1.000.000", formatNumber(1_000_000))
	assert.Equal(t, "-1.500", formatNumber(-1500))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1.250,50", formatMoney("1250.50"))
	assert.Equal(t, "49,00", formatMoney("49.00"))
	assert.Equal(t, "abc", formatMoney("abc"))
}
