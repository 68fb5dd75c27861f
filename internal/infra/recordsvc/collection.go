package recordsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/resilience"
	"github.com/bbwallet/portal-bfa-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

var _ port.Collection[domain.Company] = (*Collection[domain.Company])(nil)

// Collection is the remote implementation of the collection port, bound to
// one record-service table.
type Collection[T any] struct {
	client *Client
	name   string
}

// NewCollection binds a typed collection to a record-service table.
func NewCollection[T any](client *Client, name string) *Collection[T] {
	return &Collection[T]{client: client, name: name}
}

// NewStores builds the full collection bundle over one client.
func NewStores(client *Client) port.Stores {
	return port.Stores{
		Companies:      NewCollection[domain.Company](client, "companies"),
		Deals:          NewCollection[domain.Deal](client, "deals"),
		Investments:    NewCollection[domain.Investment](client, "investments"),
		Entities:       NewCollection[domain.InvestmentEntity](client, "investment_entities"),
		NDAs:           NewCollection[domain.NDA](client, "ndas"),
		AccessRequests: NewCollection[domain.AccessRequest](client, "access_requests"),
	}
}

// List fetches up to limit records ordered by sortExpr.
func (c *Collection[T]) List(ctx context.Context, sortExpr string, limit int) ([]T, error) {
	return c.query(ctx, nil, sortExpr, limit)
}

// Filter fetches the records matching every criteria key.
func (c *Collection[T]) Filter(ctx context.Context, criteria map[string]any, sortExpr string, limit int) ([]T, error) {
	return c.query(ctx, criteria, sortExpr, limit)
}

func (c *Collection[T]) query(ctx context.Context, criteria map[string]any, sortExpr string, limit int) ([]T, error) {
	ctx, span := tracer.Start(ctx, "RecordService.Query")
	defer span.End()
	span.SetAttributes(attribute.String("collection", c.name))

	var out []T

	_, err := c.client.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.client.cfg, func() error {
			body, err := c.client.doRequest(ctx, http.MethodGet, c.queryPath(criteria, sortExpr, limit), nil)
			if err != nil {
				return err
			}
			if body == nil {
				out = []T{}
				return nil
			}
			return json.Unmarshal(body, &out)
		})
	})
	if err != nil {
		return nil, c.wrap(err)
	}

	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Create posts the record and returns the stored representation, with the
// service-assigned id and created_date.
func (c *Collection[T]) Create(ctx context.Context, record T) (T, error) {
	ctx, span := tracer.Start(ctx, "RecordService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("collection", c.name))

	var zero T

	payload, err := json.Marshal(record)
	if err != nil {
		return zero, &domain.ErrValidation{Field: "record", Message: err.Error()}
	}

	var out T
	_, err = c.client.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.client.cfg, func() error {
			body, err := c.client.doRequest(ctx, http.MethodPost, c.name, payload)
			if err != nil {
				return err
			}
			if body == nil {
				return fmt.Errorf("record service returned no representation")
			}
			// The service returns the created rows as an array.
			var rows []T
			if err := json.Unmarshal(body, &rows); err == nil && len(rows) > 0 {
				out = rows[0]
				return nil
			}
			return json.Unmarshal(body, &out)
		})
	})
	if err != nil {
		return zero, c.wrap(err)
	}

	return out, nil
}

// queryPath builds the PostgREST-style query string. The '-field' sort
// convention maps to 'field.desc'.
func (c *Collection[T]) queryPath(criteria map[string]any, sortExpr string, limit int) string {
	params := url.Values{}

	if sortExpr == "" {
		sortExpr = "-created_date"
	}
	if field, ok := strings.CutPrefix(sortExpr, "-"); ok {
		params.Set("order", field+".desc")
	} else {
		params.Set("order", sortExpr+".asc")
	}

	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}

	// Deterministic param order keeps request logs and tests stable.
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.Set(k, "eq."+fmt.Sprint(criteria[k]))
	}

	return c.name + "?" + params.Encode()
}

func (c *Collection[T]) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "recordsvc/" + c.name}
	}
	return &domain.ErrExternalService{Service: "recordsvc/" + c.name, Err: err}
}
