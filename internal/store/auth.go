package store

import (
	"context"
	"encoding/json"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/kv"
	"github.com/bbwallet/portal-bfa-go/internal/port"

	"go.uber.org/zap"
)

var _ port.Auth = (*Auth)(nil)

// Auth is the local session stub: a persisted authenticated flag plus a
// cached identity, both living on the same substrate as the collections.
// It carries no password, token or expiry model and must not be mistaken
// for an authentication system.
type Auth struct {
	kv     kv.Store
	logger *zap.Logger
}

// NewAuth creates the session stub over the given substrate.
func NewAuth(store kv.Store, logger *zap.Logger) *Auth {
	return &Auth{kv: store, logger: logger}
}

type sessionRecord struct {
	IsAuthenticated bool `json:"is_authenticated"`
}

// IsAuthenticated reports whether the persisted session flag is set.
// Read failures degrade to false.
func (a *Auth) IsAuthenticated(ctx context.Context) (bool, error) {
	var sess sessionRecord
	a.read(ctx, KeySession, &sess)
	return sess.IsAuthenticated, nil
}

// Me returns the persisted identity, lazily creating and persisting the
// fixed default identity when none exists.
func (a *Auth) Me(ctx context.Context) (*domain.User, error) {
	var user *domain.User
	if a.read(ctx, KeyUser, &user) && user != nil && user.Email != "" {
		return user, nil
	}

	def := domain.DefaultUser()
	if err := a.write(ctx, KeyUser, def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Login marks the session authenticated, stores the default identity and
// returns it. Redirecting back into the app is the client's job.
func (a *Auth) Login(ctx context.Context) (*domain.User, error) {
	def := domain.DefaultUser()
	if err := a.write(ctx, KeySession, sessionRecord{IsAuthenticated: true}); err != nil {
		return nil, err
	}
	if err := a.write(ctx, KeyUser, def); err != nil {
		return nil, err
	}
	a.logger.Info("session authenticated", zap.String("email", def.Email))
	return &def, nil
}

// Logout clears the session flag and the cached identity.
func (a *Auth) Logout(ctx context.Context) error {
	if err := a.write(ctx, KeySession, sessionRecord{IsAuthenticated: false}); err != nil {
		return err
	}
	if err := a.write(ctx, KeyUser, nil); err != nil {
		return err
	}
	a.logger.Info("session cleared")
	return nil
}

// read decodes the payload under key into out, degrading to the zero value
// on any failure. Returns whether a usable payload existed.
func (a *Auth) read(ctx context.Context, key string, out any) bool {
	value, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		a.logger.Warn("auth: read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		a.logger.Warn("auth: corrupt payload", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (a *Auth) write(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return &domain.ErrStorage{Op: "write", Key: key, Err: err}
	}
	if err := a.kv.Set(ctx, key, payload); err != nil {
		a.logger.Error("auth: write failed", zap.String("key", key), zap.Error(err))
		return &domain.ErrStorage{Op: "write", Key: key, Err: err}
	}
	return nil
}
