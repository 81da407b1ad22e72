// Package session provides the opaque-token session store backing every
// authenticated request. Redis is the primary backend so sessions survive
// restarts; a mutex-guarded in-memory map serves as a single-instance
// fallback when Redis is absent.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Session is the server-held per-browser state linking a request to a user.
// A zero UserID means the session is anonymous. PendingIdentityHash carries
// an externally verified identity hash between an OAuth callback and the
// registration that claims it.
type Session struct {
	Token               string `json:"-"`
	UserID              uint   `json:"user_id,omitempty"`
	PendingIdentityHash string `json:"pending_identity_hash,omitempty"`
}

// Anonymous reports whether the session is bound to no user.
func (s *Session) Anonymous() bool {
	return s == nil || s.UserID == 0
}

type memEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Store persists sessions keyed by opaque token.
type Store struct {
	rc  *redis.Client
	ttl time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
}

// NewStore creates a Store. rc may be nil, in which case all sessions live
// in process memory only.
func NewStore(rc *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{
		rc:  rc,
		ttl: ttl,
		mem: map[string]memEntry{},
	}
}

// Create mints a fresh anonymous session and persists it.
func (st *Store) Create(ctx context.Context) (*Session, error) {
	sess := &Session{Token: uuid.NewString()}
	if err := st.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get resolves a token to its session. Expired or unknown tokens yield no session.
func (st *Store) Get(ctx context.Context, token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	var payload []byte
	if st.rc != nil {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		b, err := st.rc.Get(rctx, keyPrefix+token).Bytes()
		if err != nil {
			return nil, false
		}
		payload = b
	} else {
		st.mu.Lock()
		entry, ok := st.mem[token]
		if ok && time.Now().After(entry.expiresAt) {
			delete(st.mem, token)
			ok = false
		}
		st.mu.Unlock()
		if !ok {
			return nil, false
		}
		payload = entry.payload
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, false
	}
	sess.Token = token
	return &sess, true
}

// Save writes the session back under its token, refreshing the TTL.
func (st *Store) Save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	if st.rc != nil {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return st.rc.Set(rctx, keyPrefix+sess.Token, payload, st.ttl).Err()
	}

	st.mu.Lock()
	st.mem[sess.Token] = memEntry{payload: payload, expiresAt: time.Now().Add(st.ttl)}
	st.mu.Unlock()
	return nil
}

// Destroy removes the session server-side. Destroying an already absent
// token is not an error, which keeps logout idempotent.
func (st *Store) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if st.rc != nil {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return st.rc.Del(rctx, keyPrefix+token).Err()
	}

	st.mu.Lock()
	delete(st.mem, token)
	st.mu.Unlock()
	return nil
}
