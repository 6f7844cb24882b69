package http_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/gatiendev/auth-service/internal/domain/errors"
	"github.com/gatiendev/auth-service/internal/domain/models"
	"github.com/gatiendev/auth-service/internal/infrastructure/security"
)

// fakeUserRepo is an in-memory UserRepository mirroring the storage-level
// uniqueness guarantee of the postgres implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return domainErrors.ErrUsernameExists
	}
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r *fakeUserRepo) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

// fakeRefreshTokenRepo stores rows keyed by token digest and enforces
// expiry at lookup time, like the postgres implementation.
type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, userID uuid.UUID, rawToken string, ttl time.Duration) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(userID, rawToken, ttl), nil
}

func (r *fakeRefreshTokenRepo) FindByRawToken(_ context.Context, rawToken string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[security.HashToken(rawToken)]
	if !ok || !token.ExpiresAt.After(time.Now()) {
		return nil, domainErrors.ErrInvalidRefreshToken
	}
	clone := *token
	return &clone, nil
}

func (r *fakeRefreshTokenRepo) DeleteByRawToken(_ context.Context, rawToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, security.HashToken(rawToken))
	return nil
}

func (r *fakeRefreshTokenRepo) Rotate(_ context.Context, userID uuid.UUID, oldRawToken, newRawToken string, ttl time.Duration) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, security.HashToken(oldRawToken))
	return r.insert(userID, newRawToken, ttl), nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, token := range r.tokens {
		if !token.ExpiresAt.After(time.Now()) {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (r *fakeRefreshTokenRepo) insert(userID uuid.UUID, rawToken string, ttl time.Duration) *models.RefreshToken {
	now := time.Now().UTC()
	token := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: security.HashToken(rawToken),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	r.tokens[token.TokenHash] = token
	clone := *token
	return &clone
}

func (r *fakeRefreshTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
