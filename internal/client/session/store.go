// Package session persists the bearer token that represents a signed-in user.
//
// The rest of the client receives a Store explicitly; nothing reads the token
// from global state. A Store never inspects the token: whether it is still
// accepted by the server is only learned from the next API call.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
)

// DefaultTTL is how long a token is kept after sign-in.
const DefaultTTL = 7 * 24 * time.Hour

// Store reads, writes and clears the persisted token.
type Store interface {
	// Get returns ok=false when there is no token or it has expired.
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the token in the local metadata table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) repo(tx dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(tx)
}

// Get drops the stored token once it has expired.
func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	repo := s.repo(s.db)

	item, ok, err := repo.Get(ctx, common.AccessTokenCookieName)
	if err != nil {
		return "", false, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	if item.Expired(s.now()) {
		if err := repo.Delete(ctx, common.AccessTokenCookieName); err != nil {
			return "", false, fmt.Errorf("drop expired session: %w", err)
		}
		return "", false, nil
	}
	return string(item.Value), true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	now := s.now()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if _, err := repo.DeleteExpired(ctx, now); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.AccessTokenCookieName, []byte(token), now.Add(ttl)); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
		return nil
	})
}

// Clear wipes every locally stored session value, not only the token.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo(s.db).Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store used for -ephemeral runs and tests.
type MemoryStore struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Get(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", false, nil
	}
	if !m.now().Before(m.expiresAt) {
		m.token = ""
		return "", false, nil
	}
	return m.token, true, nil
}

func (m *MemoryStore) Set(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.expiresAt = m.now().Add(ttl)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.expiresAt = time.Time{}
	return nil
}
