// Package identity keeps the current user's name and role for the lifetime of
// a client session and mirrors them to durable storage so they survive restarts.
// The identity is a display and gating convenience, not a verified credential.
package identity

import (
	"context"
	"sync"

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/logger"

	"go.uber.org/zap"
)

// Storage keys, shared by every Store.
const (
	KeyUsername = "username"
	KeyRole     = "role"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Session holds the in-memory identity and writes through to a Store.
type Session struct {
	store Store

	mu      sync.RWMutex
	current model.Identity
}

// Open seeds a session from store. Missing entries leave the fields empty.
func Open(ctx context.Context, store Store) (*Session, error) {
	s := &Session{store: store}
	username, _, err := store.Get(ctx, KeyUsername)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.IdentityStoreError, "read stored username failed: %v", err)
	}
	role, _, err := store.Get(ctx, KeyRole)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.IdentityStoreError, "read stored role failed: %v", err)
	}
	s.current = model.Identity{Username: username, Role: role}
	if s.current.LoggedIn() {
		logger.Debug(ctx, "identity restored", zap.String("username", username), zap.String("role", role))
	}
	return s, nil
}

// Current returns a copy of the identity.
func (s *Session) Current() model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Login replaces the identity unconditionally and persists both fields.
// Memory is updated even when persisting fails; the error reports the failure.
func (s *Session) Login(ctx context.Context, username, role string) error {
	s.mu.Lock()
	s.current = model.Identity{Username: username, Role: role}
	s.mu.Unlock()

	if err := s.store.Set(ctx, KeyUsername, username); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.IdentityStoreError, "persist username failed: %v", err)
	}
	if err := s.store.Set(ctx, KeyRole, role); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.IdentityStoreError, "persist role failed: %v", err)
	}
	logger.Info(ctx, "logged in", zap.String("username", username), zap.String("role", role))
	return nil
}

// Logout clears the identity and removes both stored entries.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.current.Username
	s.current = model.Identity{}
	s.mu.Unlock()

	if err := s.store.Delete(ctx, KeyUsername, KeyRole); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.IdentityStoreError, "remove stored identity failed: %v", err)
	}
	logger.Info(ctx, "logged out", zap.String("username", prev))
	return nil
}
