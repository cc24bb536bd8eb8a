package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/metrics"
	"github.com/gamebuddy-app/internal/notification"
)

// GamerStore persists gamer aggregates. Lookups of unknown gamers fail with
// domain.ErrUserNotFound.
type GamerStore interface {
	FindByID(ctx context.Context, id string) (*domain.Gamer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Gamer, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Gamer, error)
	FindAll(ctx context.Context) ([]*domain.Gamer, error)
	// Save persists every given aggregate in one unit of work
	Save(ctx context.Context, gamers ...*domain.Gamer) error
}

// CatalogStore reads the static catalog rows
type CatalogStore interface {
	Achievements(ctx context.Context) ([]domain.Achievement, error)
	AchievementByID(ctx context.Context, id string) (*domain.Achievement, error)
	AchievementByName(ctx context.Context, name string) (*domain.Achievement, error)
	Avatars(ctx context.Context) ([]domain.Avatar, error)
	AvatarByID(ctx context.Context, id string) (*domain.Avatar, error)
	SpecialAvatars(ctx context.Context) ([]domain.Avatar, error)
	Games(ctx context.Context) ([]domain.Game, error)
	PopularGames(ctx context.Context) ([]domain.Game, error)
	Keywords(ctx context.Context) ([]domain.Keyword, error)
	// Communities returns the communities with the given ids, unknown ids
	// are skipped
	Communities(ctx context.Context, ids []string) ([]domain.Community, error)
}

// MessageStore is the append-only message log
type MessageStore interface {
	Insert(ctx context.Context, msg *domain.Message) error
	// Conversation returns messages exchanged by a and b, oldest first
	Conversation(ctx context.Context, a, b string) ([]domain.Message, error)
	// DistinctPeers returns receivers of self's messages and senders of
	// messages to self
	DistinctPeers(ctx context.Context, self string) ([]string, error)
	// Latest returns the newest message between a and b, nil when none
	Latest(ctx context.Context, a, b string) (*domain.Message, error)
}

// CatalogCache caches listing payloads. Errors are logged, never returned to
// callers.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Notifier hands a notification off for delivery
type Notifier interface {
	Send(ctx context.Context, n notification.Notification) error
}

// ApplicationService implements the gamer facing operations
type ApplicationService struct {
	gamers   GamerStore
	catalog  CatalogStore
	messages MessageStore
	cache    CatalogCache
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(
	gamers GamerStore,
	catalog CatalogStore,
	messages MessageStore,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		gamers:   gamers,
		catalog:  catalog,
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNotifier sets the notification sender
func (s *ApplicationService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetCache sets the catalog cache
func (s *ApplicationService) SetCache(c CatalogCache) {
	s.cache = c
}

// SetMetrics sets the metrics recorder
func (s *ApplicationService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Ready checks the stores the service depends on
func (s *ApplicationService) Ready(ctx context.Context) error {
	if _, err := s.catalog.Keywords(ctx); err != nil {
		return fmt.Errorf("catalog store: %w", err)
	}
	return nil
}

// notify sends n best effort. Failures never reach the caller.
func (s *ApplicationService) notify(ctx context.Context, n notification.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Warn("failed to send notification",
			"gamer_id", n.GamerID,
			"kind", n.Kind,
			"error", err,
		)
	}
}

// loadPair resolves self and other. Equal ids fail with ErrSameIDs before any
// lookup.
func (s *ApplicationService) loadPair(ctx context.Context, selfID, otherID string) (*domain.Gamer, *domain.Gamer, error) {
	if selfID == otherID {
		return nil, nil, domain.ErrSameIDs
	}
	self, err := s.gamers.FindByID(ctx, selfID)
	if err != nil {
		return nil, nil, err
	}
	other, err := s.gamers.FindByID(ctx, otherID)
	if err != nil {
		return nil, nil, err
	}
	return self, other, nil
}

// save stamps and persists the given aggregates
func (s *ApplicationService) save(ctx context.Context, gamers ...*domain.Gamer) error {
	now := s.now()
	for _, g := range gamers {
		g.Touch(now)
	}
	if err := s.gamers.Save(ctx, gamers...); err != nil {
		return fmt.Errorf("saving gamers: %w", err)
	}
	return nil
}
