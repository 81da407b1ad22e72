package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/store"
)

// mockUserStore implements store.UserStore in memory for testing.
type mockUserStore struct {
	mu    sync.Mutex
	seq   uint
	users map[uint]*models.User
	err   error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[uint]*models.User{}}
}

func (m *mockUserStore) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return store.ErrDuplicate
		}
		// NULL identity hashes never collide; only equal non-null values do.
		if user.IdentityHash != nil && u.IdentityHash != nil && *u.IdentityHash == *user.IdentityHash {
			return store.ErrDuplicate
		}
	}
	m.seq++
	user.ID = m.seq
	if user.MemberSince.IsZero() {
		user.MemberSince = time.Now()
	}
	if user.Theme == "" {
		user.Theme = models.DefaultTheme
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserStore) ByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) ByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) ByIdentityHash(_ context.Context, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.IdentityHash != nil && *u.IdentityHash == hash {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) SaveAvatar(_ context.Context, id uint, avatar []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Avatar = append([]byte(nil), avatar...)
	return nil
}

func (m *mockUserStore) UpdateTheme(_ context.Context, id uint, theme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Theme = theme
	return nil
}

func (m *mockUserStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// mockPostStore implements store.PostStore in memory for testing. Creation
// timestamps are spaced a second apart so recency ordering is deterministic.
type mockPostStore struct {
	mu    sync.Mutex
	seq   uint
	base  time.Time
	posts map[uint]*models.Post
	err   error
}

func newMockPostStore() *mockPostStore {
	return &mockPostStore{
		base:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		posts: map[uint]*models.Post{},
	}
}

func (m *mockPostStore) Create(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	post.ID = m.seq
	if post.CreatedAt.IsZero() {
		post.CreatedAt = m.base.Add(time.Duration(m.seq) * time.Second)
	}
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *mockPostStore) ByID(_ context.Context, id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockPostStore) List(_ context.Context, mode store.SortMode) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if mode == store.SortLikes && out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockPostStore) ByAuthor(_ context.Context, username string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Post{}
	for _, p := range m.posts {
		if p.Username == username {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockPostStore) IncrementLikes(_ context.Context, id uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	p, ok := m.posts[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	p.Likes++
	return p.Likes, nil
}

func (m *mockPostStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.posts)), nil
}

func (m *mockPostStore) TotalLikes(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, p := range m.posts {
		total += p.Likes
	}
	return total, nil
}

// stubAvatarRenderer returns a fixed blob and records invocations.
type stubAvatarRenderer struct {
	mu      sync.Mutex
	calls   []rune
	payload []byte
}

func (s *stubAvatarRenderer) Render(letter rune) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, letter)
	return s.payload, nil
}
