package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-auth/internal/model"
)

// Memory is a process-local store for development and tests. Every operation
// holds one mutex, so uniqueness checks and writes are atomic just as they
// are behind a database unique index.
type Memory struct {
	mu          sync.Mutex
	now         func() time.Time
	roles       map[string]bool
	users       map[string]model.User
	emails      map[string]string
	usernames   map[string]string
	singletons  map[model.ResourceKind]map[string]model.Resource
	profiles    map[string]model.CompleteProfile
	friendships map[string]model.Friendship
	pairs       map[string]string
	communities map[string]model.Community
}

// NewMemory returns an empty store seeded with the user and admin roles.
func NewMemory() *Memory {
	return &Memory{
		now:         time.Now,
		roles:       map[string]bool{model.RoleUser: true, model.RoleAdmin: true},
		users:       map[string]model.User{},
		emails:      map[string]string{},
		usernames:   map[string]string{},
		singletons:  map[model.ResourceKind]map[string]model.Resource{},
		profiles:    map[string]model.CompleteProfile{},
		friendships: map[string]model.Friendship{},
		pairs:       map[string]string{},
		communities: map[string]model.Community{},
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Users() *MemoryUsers             { return &MemoryUsers{m} }
func (m *Memory) Profiles() *MemoryProfiles       { return &MemoryProfiles{m} }
func (m *Memory) Friendships() *MemoryFriendships { return &MemoryFriendships{m} }
func (m *Memory) Communities() *MemoryCommunities { return &MemoryCommunities{m} }

func (m *Memory) Singleton(kind model.ResourceKind) *MemorySingleton {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.singletons[kind] == nil {
		m.singletons[kind] = map[string]model.Resource{}
	}
	return &MemorySingleton{m: m, kind: kind}
}

func (m *Memory) stamp() time.Time { return m.now().UTC() }

func cloneList(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}

type MemoryUsers struct{ m *Memory }

func (s *MemoryUsers) Create(_ context.Context, u *model.User) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := m.emails[email]; ok {
		return ErrEmailExists
	}
	if _, ok := m.usernames[u.Username]; ok {
		return ErrUsernameExists
	}
	if !m.roles[u.Role] {
		return ErrRoleNotFound
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.stamp()
	}
	u.Email = email
	m.users[u.ID] = *u
	m.emails[email] = u.ID
	m.usernames[u.Username] = u.ID
	return nil
}

func (s *MemoryUsers) lookup(id string, ok bool) (model.User, error) {
	if !ok {
		return model.User{}, ErrNotFound
	}
	u, ok := s.m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	id, ok := s.m.emails[strings.ToLower(strings.TrimSpace(email))]
	return s.lookup(id, ok)
}

func (s *MemoryUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	id, ok := s.m.usernames[username]
	return s.lookup(id, ok)
}

func (s *MemoryUsers) GetByID(_ context.Context, id string) (model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.lookup(id, true)
}

func (s *MemoryUsers) List(context.Context) ([]model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]model.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type MemorySingleton struct {
	m    *Memory
	kind model.ResourceKind
}

func (s *MemorySingleton) rows() map[string]model.Resource { return s.m.singletons[s.kind] }

func (s *MemorySingleton) Get(_ context.Context, userID string) (model.Resource, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.rows()[userID]
	if !ok {
		return model.Resource{}, ErrNotFound
	}
	r.Values = cloneList(r.Values)
	return r, nil
}

func (s *MemorySingleton) Upsert(_ context.Context, userID string, values []string) (model.Resource, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.stamp()
	r, exists := s.rows()[userID]
	if !exists {
		r = model.Resource{ID: uuid.NewString(), UserID: userID, CreatedAt: now}
	}
	r.Values = cloneList(values)
	r.UpdatedAt = now
	s.rows()[userID] = r
	r.Values = cloneList(r.Values)
	return r, !exists, nil
}

func (s *MemorySingleton) CreateIfAbsent(_ context.Context, userID string, values []string) (model.Resource, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, exists := s.rows()[userID]; exists {
		return model.Resource{}, ErrAlreadyExists
	}
	now := s.m.stamp()
	r := model.Resource{ID: uuid.NewString(), UserID: userID, Values: cloneList(values), CreatedAt: now, UpdatedAt: now}
	s.rows()[userID] = r
	r.Values = cloneList(r.Values)
	return r, nil
}

func (s *MemorySingleton) Delete(_ context.Context, userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, exists := s.rows()[userID]; !exists {
		return ErrNotFound
	}
	delete(s.rows(), userID)
	return nil
}

type MemoryProfiles struct{ m *Memory }

func (s *MemoryProfiles) Get(_ context.Context, userID string) (model.CompleteProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.profiles[userID]
	if !ok {
		return model.CompleteProfile{}, ErrNotFound
	}
	p.Hobbies = cloneList(p.Hobbies)
	return p, nil
}

func (s *MemoryProfiles) Upsert(_ context.Context, p model.CompleteProfile) (model.CompleteProfile, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.stamp()
	cur, exists := s.m.profiles[p.UserID]
	if exists {
		p.ID, p.CreatedAt = cur.ID, cur.CreatedAt
	} else {
		p.ID, p.CreatedAt = uuid.NewString(), now
	}
	p.UpdatedAt = now
	p.Hobbies = cloneList(p.Hobbies)
	s.m.profiles[p.UserID] = p
	p.Hobbies = cloneList(p.Hobbies)
	return p, !exists, nil
}

type MemoryFriendships struct{ m *Memory }

func (s *MemoryFriendships) Create(_ context.Context, f *model.Friendship) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	key := PairKey(f.RequesterID, f.AddresseeID)
	if _, ok := s.m.pairs[key]; ok {
		return ErrConflict
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = model.FriendshipPending
	}
	now := s.m.stamp()
	f.CreatedAt, f.UpdatedAt = now, now
	s.m.friendships[f.ID] = *f
	s.m.pairs[key] = f.ID
	return nil
}

func (s *MemoryFriendships) GetByID(_ context.Context, id string) (model.Friendship, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.friendships[id]
	if !ok {
		return model.Friendship{}, ErrNotFound
	}
	return f, nil
}

func (s *MemoryFriendships) UpdateStatus(_ context.Context, id string, status model.FriendshipStatus) (model.Friendship, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.friendships[id]
	if !ok {
		return model.Friendship{}, ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = s.m.stamp()
	s.m.friendships[id] = f
	return f, nil
}

func (s *MemoryFriendships) ListForUser(_ context.Context, userID string, status model.FriendshipStatus) ([]model.Friendship, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.Friendship{}
	for _, f := range s.m.friendships {
		if f.RequesterID != userID && f.AddresseeID != userID {
			continue
		}
		if status != "" && f.Status != status {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryFriendships) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.friendships[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.m.friendships, id)
	delete(s.m.pairs, PairKey(f.RequesterID, f.AddresseeID))
	return nil
}

type MemoryCommunities struct{ m *Memory }

func (s *MemoryCommunities) Create(_ context.Context, c *model.Community) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	now := s.m.stamp()
	c.CreatedAt, c.UpdatedAt = now, now
	c.MembersCount, c.IsActive = 1, true
	stored := *c
	stored.Tags = cloneList(c.Tags)
	s.m.communities[c.ID] = stored
	return nil
}

func (s *MemoryCommunities) GetByID(_ context.Context, id string) (model.Community, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.communities[id]
	if !ok {
		return model.Community{}, ErrNotFound
	}
	c.Tags = cloneList(c.Tags)
	return c, nil
}

func (s *MemoryCommunities) ListActive(_ context.Context, category string) ([]model.Community, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.Community{}
	for _, c := range s.m.communities {
		if !c.IsActive || (category != "" && c.Category != category) {
			continue
		}
		c.Tags = cloneList(c.Tags)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
