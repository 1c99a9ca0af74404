// Package quota contiene las reglas puras del periodo de cuota (mes calendario).
package quota

import "time"

// Period ventana mensual [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// PeriodFor devuelve el mes calendario que contiene t en la zona loc.
// Start es inclusivo y End exclusivo: una petición exactamente en End pertenece al mes siguiente.
func PeriodFor(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParseMonth interpreta "YYYY-MM" como periodo en la zona loc.
func ParseMonth(s string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return Period{}, err
	}
	return PeriodFor(t, loc), nil
}

// Remaining cupo restante; nil si la cuota es ilimitada. Nunca negativo.
func Remaining(used int64, limit *int) *int64 {
	if limit == nil {
		return nil
	}
	r := int64(*limit) - used
	if r < 0 {
		r = 0
	}
	return &r
}
