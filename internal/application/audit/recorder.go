// Package audit persiste y consulta el rastro de autenticación.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ auth.AuditSink = (*Recorder)(nil)

// Recorder AuditSink con cola acotada y un único writer. Si la cola está llena el evento
// se descarta y se notifica por onDrop; Emit nunca bloquea.
type Recorder struct {
	repo   repository.APILogRepository
	log    zerolog.Logger
	onDrop func()

	mu     sync.RWMutex
	closed bool
	queue  chan auth.AuditEvent
	done   chan struct{}
}

// NewRecorder construye el recorder; Start arranca el writer.
func NewRecorder(repo repository.APILogRepository, bufferSize int, log zerolog.Logger, onDrop func()) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Recorder{
		repo:   repo,
		log:    log,
		onDrop: onDrop,
		queue:  make(chan auth.AuditEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Start lanza la goroutine que persiste la cola.
func (r *Recorder) Start() {
	go r.run()
}

// Emit encola el evento sin bloquear.
func (r *Recorder) Emit(e auth.AuditEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop()
		return
	}
	select {
	case r.queue <- e:
	default:
		r.drop()
	}
}

func (r *Recorder) drop() {
	if r.onDrop != nil {
		r.onDrop()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		r.write(e)
	}
}

func (r *Recorder) write(e auth.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := &entity.APILog{
		ID:        uuid.New().String(),
		KeyPrefix: e.KeyPrefix,
		Outcome:   string(e.Outcome),
		Method:    e.Method,
		Path:      e.Path,
		IP:        e.IP,
		CreatedAt: e.At,
	}
	if e.AccountID != "" {
		id := e.AccountID
		entry.AccountID = &id
	}
	if err := r.repo.Insert(ctx, entry); err != nil {
		r.log.Warn().Err(err).Str("outcome", entry.Outcome).Msg("no se pudo persistir evento de auditoría")
	}
}

// Close deja de aceptar eventos y espera a que la cola se vacíe o venza ctx.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
