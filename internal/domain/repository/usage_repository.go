package repository

import (
	"context"
	"time"
)

// UsageRepository define el puerto del contador mensual de peticiones.
type UsageRepository interface {
	// IncrementIfBelow incrementa en 1 el contador del periodo solo si el resultado no supera
	// limit (nil = sin tope). Crea el contador con 1 si no existe. Es atómico: devuelve el
	// valor resultante y si el incremento ocurrió.
	IncrementIfBelow(ctx context.Context, accountID string, periodStart time.Time, limit *int) (count int64, incremented bool, err error)
	// Get devuelve el contador del periodo (0 si no existe).
	Get(ctx context.Context, accountID string, periodStart time.Time) (int64, error)
}
