package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gamebuddy-app/internal/domain"
)

// CatalogStore keeps the catalog rows in insertion order
type CatalogStore struct {
	mu           sync.RWMutex
	achievements []domain.Achievement
	avatars      []domain.Avatar
	games        []domain.Game
	keywords     []domain.Keyword
	communities  []domain.Community
}

// NewCatalogStore creates an empty catalog
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// UpsertAchievements adds or replaces achievements by id
func (c *CatalogStore) UpsertAchievements(_ context.Context, items ...domain.Achievement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.achievements = upsert(c.achievements, items, func(a domain.Achievement) string { return a.ID })
	return nil
}

// UpsertAvatars adds or replaces avatars by id
func (c *CatalogStore) UpsertAvatars(_ context.Context, items ...domain.Avatar) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.avatars = upsert(c.avatars, items, func(a domain.Avatar) string { return a.ID })
	return nil
}

// UpsertGames adds or replaces games by id
func (c *CatalogStore) UpsertGames(_ context.Context, items ...domain.Game) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games = upsert(c.games, items, func(g domain.Game) string { return g.ID })
	return nil
}

// UpsertKeywords adds or replaces keywords by id
func (c *CatalogStore) UpsertKeywords(_ context.Context, items ...domain.Keyword) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keywords = upsert(c.keywords, items, func(k domain.Keyword) string { return k.ID })
	return nil
}

// UpsertCommunities adds or replaces communities by id
func (c *CatalogStore) UpsertCommunities(_ context.Context, items ...domain.Community) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.communities = upsert(c.communities, items, func(cm domain.Community) string { return cm.ID })
	return nil
}

func upsert[T any](list []T, items []T, id func(T) string) []T {
	for _, item := range items {
		replaced := false
		for i := range list {
			if id(list[i]) == id(item) {
				list[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, item)
		}
	}
	return list
}

func (c *CatalogStore) Achievements(_ context.Context) ([]domain.Achievement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Achievement{}, c.achievements...), nil
}

func (c *CatalogStore) AchievementByID(_ context.Context, id string) (*domain.Achievement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.achievements {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAchievementNotFound
}

func (c *CatalogStore) AchievementByName(_ context.Context, name string) (*domain.Achievement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.achievements {
		if a.Name == name {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAchievementNotFound
}

func (c *CatalogStore) Avatars(_ context.Context) ([]domain.Avatar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Avatar{}, c.avatars...), nil
}

func (c *CatalogStore) AvatarByID(_ context.Context, id string) (*domain.Avatar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.avatars {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAvatarNotFound
}

func (c *CatalogStore) SpecialAvatars(_ context.Context) ([]domain.Avatar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Avatar{}
	for _, a := range c.avatars {
		if a.Special {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *CatalogStore) Games(_ context.Context) ([]domain.Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Game{}, c.games...), nil
}

// PopularGames returns popular games, best rated first
func (c *CatalogStore) PopularGames(_ context.Context) ([]domain.Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Game{}
	for _, g := range c.games {
		if g.Popular {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgVote > out[j].AvgVote })
	return out, nil
}

func (c *CatalogStore) Keywords(_ context.Context) ([]domain.Keyword, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Keyword{}, c.keywords...), nil
}

// Communities returns the communities with the given ids, sorted by name
func (c *CatalogStore) Communities(_ context.Context, ids []string) ([]domain.Community, error) {
	want := domain.NewIDSet(ids...)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Community{}
	for _, cm := range c.communities {
		if want.Has(cm.ID) {
			out = append(out, cm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
