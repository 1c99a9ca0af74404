package quota_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/quota"
)

// within informa si t cae en [Start, End).
func within(p quota.Period, t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func TestPeriodFor_MesCalendario(t *testing.T) {
	at := time.Date(2026, time.October, 14, 15, 30, 0, 0, time.UTC)
	p := quota.PeriodFor(at, time.UTC)

	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC), p.End)
	assert.True(t, within(p, at))
}

func TestPeriodFor_LimiteExactoPerteneceAlSiguiente(t *testing.T) {
	boundary := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	oct := quota.PeriodFor(boundary.Add(-time.Nanosecond), time.UTC)
	nov := quota.PeriodFor(boundary, time.UTC)

	assert.False(t, within(oct, boundary))
	assert.True(t, within(nov, boundary))
	assert.Equal(t, boundary, nov.Start)
}

func TestPeriodFor_Diciembre(t *testing.T) {
	p := quota.PeriodFor(time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), p.End)
}

func TestPeriodFor_ZonaHoraria(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	// 2026-11-01 03:00 UTC sigue siendo octubre en Bogotá (UTC-5).
	at := time.Date(2026, time.November, 1, 3, 0, 0, 0, time.UTC)
	p := quota.PeriodFor(at, bogota)
	assert.Equal(t, time.October, p.Start.Month())
	assert.True(t, within(p, at))
}

func TestParseMonth(t *testing.T) {
	p, err := quota.ParseMonth("2026-02", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), p.End)

	_, err = quota.ParseMonth("2026/02", time.UTC)
	assert.Error(t, err)
}

func TestRemaining(t *testing.T) {
	assert.Nil(t, quota.Remaining(10, nil))

	limit := 5
	assert.Equal(t, int64(2), *quota.Remaining(3, &limit))
	assert.Equal(t, int64(0), *quota.Remaining(9, &limit))
}
