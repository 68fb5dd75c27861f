// Package store implements the local record store: a generic per-collection
// repository over the key-value substrate, plus sample-data seeding and the
// session stub. It is the drop-in stand-in for the hosted record service and
// honors the same ports.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/kv"
	"github.com/bbwallet/portal-bfa-go/internal/infra/observability"
	"github.com/bbwallet/portal-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("store")

// Compile-time contract assertion against the collection port.
var _ port.Collection[domain.Company] = (*Repository[domain.Company])(nil)

// Substrate keys, one per logical collection. The version suffix is the
// only schema tag the persisted state carries.
const (
	KeyCompanies      = "bbwallet:companies:v1"
	KeyDeals          = "bbwallet:deals:v1"
	KeyInvestments    = "bbwallet:investments:v1"
	KeyEntities       = "bbwallet:entities:v1"
	KeyNDAs           = "bbwallet:ndas:v1"
	KeyAccessRequests = "bbwallet:accessRequests:v1"
	KeyUser           = "bbwallet:user:v1"
	KeySession        = "bbwallet:auth:v1"
)

// Repository is the generic collection store. The sort/filter/limit
// algorithm runs over raw records; typed values exist only at the boundary.
type Repository[T any] struct {
	collection string
	key        string
	kv         kv.Store
	metrics    *observability.Metrics
	logger     *zap.Logger

	// mu serializes the load-append-write cycle in Create. The repository
	// owns its substrate key, so per-repository locking is sufficient.
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewRepository creates a repository for one collection. collection is the
// metrics/log label, key the substrate key.
func NewRepository[T any](collection, key string, store kv.Store, metrics *observability.Metrics, logger *zap.Logger) *Repository[T] {
	return &Repository[T]{
		collection: collection,
		key:        key,
		kv:         store,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newID:      NewRecordID,
	}
}

// NewStores builds the full collection bundle over one substrate.
func NewStores(store kv.Store, metrics *observability.Metrics, logger *zap.Logger) port.Stores {
	return port.Stores{
		Companies:      NewRepository[domain.Company]("companies", KeyCompanies, store, metrics, logger),
		Deals:          NewRepository[domain.Deal]("deals", KeyDeals, store, metrics, logger),
		Investments:    NewRepository[domain.Investment]("investments", KeyInvestments, store, metrics, logger),
		Entities:       NewRepository[domain.InvestmentEntity]("entities", KeyEntities, store, metrics, logger),
		NDAs:           NewRepository[domain.NDA]("ndas", KeyNDAs, store, metrics, logger),
		AccessRequests: NewRepository[domain.AccessRequest]("access_requests", KeyAccessRequests, store, metrics, logger),
	}
}

// NewRecordID generates a collection-unique identifier: coarse unix-milli
// time plus a short random token. Not globally unique and not monotonic
// across clock adjustments; sufficient for a single local profile.
func NewRecordID() string {
	token := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), token)
}

// List returns up to limit records ordered by sort.
func (r *Repository[T]) List(ctx context.Context, sort string, limit int) ([]T, error) {
	ctx, span := tracer.Start(ctx, "Repository.List")
	defer span.End()
	span.SetAttributes(attribute.String("collection", r.collection))

	items := r.load(ctx)
	sortRecords(items, sort)
	return decodeRecords[T](truncate(items, limit))
}

// Filter returns the records matching every criteria key, sorted and
// truncated as in List. Empty criteria behaves identically to List.
func (r *Repository[T]) Filter(ctx context.Context, criteria map[string]any, sort string, limit int) ([]T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Filter")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", r.collection),
		attribute.Int("criteria", len(criteria)),
	)

	items := filterRecords(r.load(ctx), criteria)
	sortRecords(items, sort)
	return decodeRecords[T](truncate(items, limit))
}

// Create appends the record to the collection and persists it. A generated
// id, created_date and created_by are stamped when absent. A substrate
// write failure is returned to the caller. Concurrent creates serialize so
// an interleaved load and write cannot drop a record.
func (r *Repository[T]) Create(ctx context.Context, record T) (T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("collection", r.collection))

	var zero T

	raw, err := encodeRecord(record)
	if err != nil {
		return zero, &domain.ErrValidation{Field: "record", Message: err.Error()}
	}
	r.stamp(raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	items := append(r.load(ctx), raw)
	payload, err := json.Marshal(items)
	if err != nil {
		return zero, &domain.ErrStorage{Op: "write", Key: r.key, Err: err}
	}

	if err := r.kv.Set(ctx, r.key, payload); err != nil {
		r.metrics.IncrStoreWriteFailure(r.collection)
		r.logger.Error("store: write failed",
			zap.String("collection", r.collection),
			zap.String("key", r.key),
			zap.Error(err),
		)
		return zero, &domain.ErrStorage{Op: "write", Key: r.key, Err: err}
	}

	r.metrics.IncrStoreWrite(r.collection)
	r.metrics.IncrRecordCreated(r.collection)

	return decodeRecord[T](raw)
}

// stamp fills in the generated fields the caller omitted.
func (r *Repository[T]) stamp(raw rawRecord) {
	if s, _ := raw["id"].(string); s == "" {
		raw["id"] = r.newID()
	}
	if s, _ := raw[createdDateField].(string); s == "" {
		raw[createdDateField] = r.now().Format(time.RFC3339)
	}
	if s, _ := raw["created_by"].(string); s == "" {
		raw["created_by"] = domain.DefaultUser().Email
	}
}

// load reads the collection. Read failures and corrupt payloads degrade to
// the empty collection with a warning; callers cannot distinguish "empty"
// from "unreadable".
func (r *Repository[T]) load(ctx context.Context) []rawRecord {
	value, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.metrics.IncrStoreReadFailure(r.collection)
		r.logger.Warn("store: read failed, treating collection as empty",
			zap.String("collection", r.collection),
			zap.String("key", r.key),
			zap.Error(err),
		)
		return nil
	}
	r.metrics.IncrStoreRead(r.collection)
	if !ok {
		return nil
	}

	var items []rawRecord
	if err := json.Unmarshal(value, &items); err != nil {
		r.metrics.IncrStoreReadFailure(r.collection)
		r.logger.Warn("store: corrupt payload, treating collection as empty",
			zap.String("collection", r.collection),
			zap.String("key", r.key),
			zap.Error(err),
		)
		return nil
	}
	return items
}
