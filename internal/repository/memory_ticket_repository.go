package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// Repository operation names, used for fault injection and call counting.
const (
	OpList   = "list"
	OpInsert = "insert"
	OpUpdate = "update"
)

// MemoryTicketRepository keeps tickets in process memory. It backs the
// "memory" store backend and doubles as the test fake.
type MemoryTicketRepository struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	now     func() time.Time
	faults  map[string]error
	delays  map[string]time.Duration
	calls   map[string]int
}

// NewMemoryTicketRepository builds an empty in-memory repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		now:    time.Now,
		faults: make(map[string]error),
		delays: make(map[string]time.Duration),
		calls:  make(map[string]int),
	}
}

// WithClock overrides the clock used to stamp createdAt.
func (r *MemoryTicketRepository) WithClock(now func() time.Time) *MemoryTicketRepository {
	r.now = now
	return r
}

// Seed stores tickets as-is, keeping their ids and timestamps.
func (r *MemoryTicketRepository) Seed(tickets ...domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range tickets {
		r.tickets = append(r.tickets, ticket.Clone())
	}
}

// FailWith makes every subsequent call to op return err until cleared with a
// nil error.
func (r *MemoryTicketRepository) FailWith(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.faults, op)
		return
	}
	r.faults[op] = err
}

// Delay makes every subsequent call to op wait d before running. A context
// that ends first fails the call with a connection error.
func (r *MemoryTicketRepository) Delay(op string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays[op] = d
}

func (r *MemoryTicketRepository) wait(ctx context.Context, op string) error {
	r.mu.Lock()
	d := r.delays[op]
	r.mu.Unlock()
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return apperrors.NewConnectionError(ctx.Err())
	}
}

// Calls reports how many times op was invoked.
func (r *MemoryTicketRepository) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *MemoryTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	if err := r.wait(ctx, OpList); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpList]++
	if err := r.faults[OpList]; err != nil {
		return nil, err
	}

	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, ticket.Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.wait(ctx, OpInsert); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpInsert]++
	if err := r.faults[OpInsert]; err != nil {
		return err
	}

	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.now()
	r.tickets = append(r.tickets, ticket.Clone())
	return nil
}

func (r *MemoryTicketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) error {
	if err := r.wait(ctx, OpUpdate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpUpdate]++
	if err := r.faults[OpUpdate]; err != nil {
		return err
	}

	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].Apply(patch)
			return nil
		}
	}
	return apperrors.NewNotFound("chamado", map[string]any{"id": id})
}
