package inventory

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Options parámetros del motor.
type Options struct {
	MaxRetries         int           // reintentos ante conflicto antes de devolver ErrConcurrencyConflict
	RetryBackoff       time.Duration // espera base; crece linealmente por intento
	RebuildParallelism int
	Location           *time.Location   // zona para decidir "hoy"
	Now                func() time.Time // reloj inyectable
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RebuildParallelism <= 0 {
		o.RebuildParallelism = 1
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().UTC()
}

func (o Options) today() entity.Date {
	return entity.DateOf(o.Now().In(o.Location))
}
