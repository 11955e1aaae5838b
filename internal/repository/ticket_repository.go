package repository

import (
	"context"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

// TicketRepository is the row-store gateway. Implementations classify their
// failures into the errorutil connection/schema/permission categories.
type TicketRepository interface {
	// List returns every ticket ordered by createdAt descending.
	List(ctx context.Context) ([]domain.Ticket, error)
	// Insert stores a new ticket and fills in the ID and CreatedAt the store
	// assigned.
	Insert(ctx context.Context, ticket *domain.Ticket) error
	// Update applies a partial update. ID and CreatedAt are never written.
	Update(ctx context.Context, id string, patch domain.TicketPatch) error
}
