// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations: the local SQLite-backed store and the
// hosted record service both satisfy the same ports, so handlers and
// services never know which backend is active.
package port

import (
	"context"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
)

// Collection is the generic per-entity-type repository. Records are
// append-only: there is no update or delete operation.
//
// sort names a record field; a leading '-' reverses the comparison.
// Records missing the sort field compare by created_date instead.
// limit <= 0 means no truncation.
type Collection[T any] interface {
	// List returns up to limit records ordered by sort.
	List(ctx context.Context, sort string, limit int) ([]T, error)

	// Filter is List restricted to records where every criteria key
	// matches the record field by strict equality. Empty criteria
	// behaves identically to List.
	Filter(ctx context.Context, criteria map[string]any, sort string, limit int) ([]T, error)

	// Create stores the record, assigning a generated id, created_date
	// and created_by when absent, and returns the stored record.
	Create(ctx context.Context, record T) (T, error)
}

// Stores bundles one collection per entity type.
type Stores struct {
	Companies      Collection[domain.Company]
	Deals          Collection[domain.Deal]
	Investments    Collection[domain.Investment]
	Entities       Collection[domain.InvestmentEntity]
	NDAs           Collection[domain.NDA]
	AccessRequests Collection[domain.AccessRequest]
}

// Auth is the pseudo-session port. The local implementation toggles a
// persisted flag; the hosted implementation proxies the record service's
// session endpoints. Neither carries credentials.
type Auth interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	Me(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
