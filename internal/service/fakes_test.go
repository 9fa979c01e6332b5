package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/storage"
)

// memoryRepo stores encoded documents so callers never share memory with it,
// the same way a real document store behaves.
type memoryRepo struct {
	mu    sync.Mutex
	docs  map[string][]byte
	saves int
	gets  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[string][]byte)}
}

func (r *memoryRepo) put(d *domain.Dashboard) {
	raw, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[d.Key()] = raw
}

func (r *memoryRepo) load(role domain.Role, ownerID string) (*domain.Dashboard, bool) {
	r.mu.Lock()
	raw, ok := r.docs[domain.DashboardKey(role, ownerID)]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	var d domain.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		panic(err)
	}
	return &d, true
}

func (r *memoryRepo) Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	d, ok := r.load(role, ownerID)
	if !ok {
		return nil, fmt.Errorf("dashboard %s: %w", domain.DashboardKey(role, ownerID), domain.ErrNotFound)
	}
	return d, nil
}

func (r *memoryRepo) GetOrCreate(ctx context.Context, role domain.Role, ownerID string, now time.Time) (*domain.Dashboard, bool, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	if d, ok := r.load(role, ownerID); ok {
		return d, false, nil
	}
	d := domain.NewDashboard(role, ownerID, now)
	r.put(d)
	return d, true, nil
}

func (r *memoryRepo) Save(ctx context.Context, d *domain.Dashboard) error {
	r.put(d)
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) ListOwners(ctx context.Context, role domain.Role) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owners []string
	prefix := string(role) + ":"
	for key := range r.docs {
		if strings.HasPrefix(key, prefix) {
			owners = append(owners, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(owners)
	return owners, nil
}

func (r *memoryRepo) TopRated(ctx context.Context, role domain.Role, limit int) ([]domain.DashboardSummary, error) {
	owners, _ := r.ListOwners(ctx, role)
	var out []domain.DashboardSummary
	for _, owner := range owners {
		d, _ := r.load(role, owner)
		if len(d.Ratings) > 0 {
			out = append(out, d.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AverageRating > out[j].AverageRating })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type memoryCache struct {
	mu      sync.Mutex
	docs    map[string][]byte
	failSet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{docs: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, bool, error) {
	c.mu.Lock()
	raw, ok := c.docs[domain.DashboardKey(role, ownerID)]
	c.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	var d domain.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

func (c *memoryCache) Set(ctx context.Context, d *domain.Dashboard) error {
	if c.failSet {
		return fmt.Errorf("cache unavailable")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[d.Key()] = raw
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, role domain.Role, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, domain.DashboardKey(role, ownerID))
	return nil
}

func (c *memoryCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = make(map[string][]byte)
	return nil
}

func (c *memoryCache) has(role domain.Role, ownerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.docs[domain.DashboardKey(role, ownerID)]
	return ok
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memoryStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *memoryStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}
