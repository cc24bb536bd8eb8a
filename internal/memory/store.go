// Package memory provides in-process gamer, catalog and message stores. They
// back the memory storage driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gamebuddy-app/internal/domain"
)

type pairKey struct {
	low, high string
}

// GamerStore keeps gamer aggregates with relations stored once per pair
type GamerStore struct {
	mu        sync.RWMutex
	gamers    map[string]*domain.Gamer
	relations map[pairKey]domain.Relation
}

// NewGamerStore creates an empty gamer store
func NewGamerStore() *GamerStore {
	return &GamerStore{
		gamers:    make(map[string]*domain.Gamer),
		relations: make(map[pairKey]domain.Relation),
	}
}

// relationsOf returns the stored pair states mentioning id keyed by peer.
// Callers hold the lock.
func (s *GamerStore) relationsOf(id string) map[string]domain.Relation {
	out := make(map[string]domain.Relation)
	for k, r := range s.relations {
		switch id {
		case k.low:
			out[k.high] = r
		case k.high:
			out[k.low] = r
		}
	}
	return out
}

func (s *GamerStore) load(id string) (*domain.Gamer, bool) {
	g, ok := s.gamers[id]
	if !ok {
		return nil, false
	}
	c := g.Clone()
	domain.ApplyRelations(c, s.relationsOf(id))
	return c, true
}

// FindByID returns a copy of the gamer
func (s *GamerStore) FindByID(_ context.Context, id string) (*domain.Gamer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.load(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return g, nil
}

// FindByEmail returns a copy of the gamer with the given email
func (s *GamerStore) FindByEmail(_ context.Context, email string) (*domain.Gamer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, g := range s.gamers {
		if g.Email == email {
			found, _ := s.load(id)
			return found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindByIDs returns the gamers that exist among ids
func (s *GamerStore) FindByIDs(_ context.Context, ids []string) ([]*domain.Gamer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Gamer, 0, len(ids))
	for _, id := range ids {
		if g, ok := s.load(id); ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// FindAll returns every gamer ordered by id
func (s *GamerStore) FindAll(_ context.Context) ([]*domain.Gamer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Gamer, 0, len(s.gamers))
	for id := range s.gamers {
		g, _ := s.load(id)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save upserts the gamers under one lock. Each gamer rewrites only the
// relation bits it owns.
func (s *GamerStore) Save(_ context.Context, gamers ...*domain.Gamer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range gamers {
		g.Normalize()
		s.gamers[g.ID] = g.Clone()

		for peer, r := range domain.MergeGamer(g, s.relationsOf(g.ID)) {
			low, high := domain.Pair(g.ID, peer)
			key := pairKey{low: low, high: high}
			if r == 0 {
				delete(s.relations, key)
				continue
			}
			s.relations[key] = r
		}
	}
	return nil
}

// Len returns the number of stored gamers
func (s *GamerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gamers)
}
