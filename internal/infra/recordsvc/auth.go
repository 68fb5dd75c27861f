package recordsvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/port"
)

var _ port.Auth = (*SessionClient)(nil)

// SessionClient proxies the record service's session endpoints. The call
// shape matches the local stub exactly; only the backing differs.
type SessionClient struct {
	client *Client
}

// NewSessionClient creates the remote session adapter.
func NewSessionClient(client *Client) *SessionClient {
	return &SessionClient{client: client}
}

type remoteSession struct {
	Authenticated bool `json:"authenticated"`
}

// IsAuthenticated asks the service whether the session is live.
func (s *SessionClient) IsAuthenticated(ctx context.Context) (bool, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "auth/session", nil)
	if err != nil {
		return false, &domain.ErrExternalService{Service: "recordsvc/auth", Err: err}
	}
	if body == nil {
		return false, nil
	}

	var sess remoteSession
	if err := json.Unmarshal(body, &sess); err != nil {
		return false, &domain.ErrExternalService{Service: "recordsvc/auth", Err: err}
	}
	return sess.Authenticated, nil
}

// Ping probes the session endpoint for readiness checks. The session state
// itself does not matter, only that the service answers.
func (s *SessionClient) Ping(ctx context.Context) error {
	_, err := s.IsAuthenticated(ctx)
	return err
}

// Me returns the session identity known to the service.
func (s *SessionClient) Me(ctx context.Context) (*domain.User, error) {
	return s.userRequest(ctx, http.MethodGet, "auth/me")
}

// Login marks the session authenticated on the service side.
func (s *SessionClient) Login(ctx context.Context) (*domain.User, error) {
	return s.userRequest(ctx, http.MethodPost, "auth/login")
}

// Logout clears the session on the service side.
func (s *SessionClient) Logout(ctx context.Context) error {
	_, err := s.client.doRequest(ctx, http.MethodPost, "auth/logout", nil)
	if err != nil {
		return &domain.ErrExternalService{Service: "recordsvc/auth", Err: err}
	}
	return nil
}

func (s *SessionClient) userRequest(ctx context.Context, method, path string) (*domain.User, error) {
	body, err := s.client.doRequest(ctx, method, path, nil)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "recordsvc/auth", Err: err}
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: "session"}
	}

	var user domain.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &domain.ErrExternalService{Service: "recordsvc/auth", Err: err}
	}
	return &user, nil
}
