package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// validateCustomPrice el precio negociado solo aplica a CUSTOM y no puede ser negativo.
// provided indica si el request trajo un precio explícito.
func validateCustomPrice(plan entity.SubscriptionPlan, provided bool, price *decimal.Decimal) error {
	if price == nil {
		return nil
	}
	if provided && plan != entity.PlanCustom {
		return fmt.Errorf("%w: customMonthlyPrice solo aplica al plan CUSTOM", domain.ErrInvalidInput)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: customMonthlyPrice negativo", domain.ErrInvalidInput)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: customMonthlyPrice admite máximo 2 decimales", domain.ErrInvalidInput)
	}
	return nil
}
