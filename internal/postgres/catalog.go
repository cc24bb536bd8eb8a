package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	achievementColumns = `id::text, name, value, description`
	avatarColumns      = `id::text, image, is_special, price`
	gameColumns        = `id, name, game_icon, category, avg_vote, description, is_popular`
	keywordColumns     = `id, name, description`
	communityColumns   = `id::text, name, description, community_avatar, wallpaper, owner_id, created_at`
)

func scanAchievement(row pgx.CollectableRow) (domain.Achievement, error) {
	var a domain.Achievement
	err := row.Scan(&a.ID, &a.Name, &a.Value, &a.Description)
	return a, err
}

func scanAvatar(row pgx.CollectableRow) (domain.Avatar, error) {
	var a domain.Avatar
	err := row.Scan(&a.ID, &a.Image, &a.Special, &a.Price)
	return a, err
}

func scanGame(row pgx.CollectableRow) (domain.Game, error) {
	var g domain.Game
	err := row.Scan(&g.ID, &g.Name, &g.Icon, &g.Category, &g.AvgVote, &g.Description, &g.Popular)
	return g, err
}

func scanKeyword(row pgx.CollectableRow) (domain.Keyword, error) {
	var k domain.Keyword
	err := row.Scan(&k.ID, &k.Name, &k.Description)
	return k, err
}

func scanCommunity(row pgx.CollectableRow) (domain.Community, error) {
	var c domain.Community
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Avatar, &c.Wallpaper, &c.OwnerID, &c.CreatedAt)
	return c, err
}

func list[T any](ctx context.Context, r *Repository, what, query string, scan pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", what, err)
	}
	return out, nil
}

func one[T any](ctx context.Context, r *Repository, what, query string, scan pgx.RowToFunc[T], notFound error, arg any) (*T, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}
	out, err := pgx.CollectExactlyOneRow(rows, scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}
	return &out, nil
}

// Achievements lists the achievement catalog
func (r *Repository) Achievements(ctx context.Context) ([]domain.Achievement, error) {
	return list(ctx, r, "achievements", `SELECT `+achievementColumns+` FROM achievements ORDER BY name`, scanAchievement)
}

// AchievementByID retrieves an achievement by id
func (r *Repository) AchievementByID(ctx context.Context, id string) (*domain.Achievement, error) {
	return one(ctx, r, "achievement", `SELECT `+achievementColumns+` FROM achievements WHERE id = $1::uuid`,
		scanAchievement, domain.ErrAchievementNotFound, id)
}

// AchievementByName retrieves an achievement by name
func (r *Repository) AchievementByName(ctx context.Context, name string) (*domain.Achievement, error) {
	return one(ctx, r, "achievement", `SELECT `+achievementColumns+` FROM achievements WHERE name = $1`,
		scanAchievement, domain.ErrAchievementNotFound, name)
}

// Avatars lists every avatar
func (r *Repository) Avatars(ctx context.Context) ([]domain.Avatar, error) {
	return list(ctx, r, "avatars", `SELECT `+avatarColumns+` FROM avatars ORDER BY is_special, price, image`, scanAvatar)
}

// AvatarByID retrieves an avatar by id
func (r *Repository) AvatarByID(ctx context.Context, id string) (*domain.Avatar, error) {
	return one(ctx, r, "avatar", `SELECT `+avatarColumns+` FROM avatars WHERE id = $1::uuid`,
		scanAvatar, domain.ErrAvatarNotFound, id)
}

// SpecialAvatars lists the priced avatars
func (r *Repository) SpecialAvatars(ctx context.Context) ([]domain.Avatar, error) {
	return list(ctx, r, "special avatars", `SELECT `+avatarColumns+` FROM avatars WHERE is_special ORDER BY price DESC, image`, scanAvatar)
}

// Games lists every game
func (r *Repository) Games(ctx context.Context) ([]domain.Game, error) {
	return list(ctx, r, "games", `SELECT `+gameColumns+` FROM games ORDER BY name`, scanGame)
}

// PopularGames lists popular games, best rated first
func (r *Repository) PopularGames(ctx context.Context) ([]domain.Game, error) {
	return list(ctx, r, "popular games", `SELECT `+gameColumns+` FROM games WHERE is_popular ORDER BY avg_vote DESC`, scanGame)
}

// Keywords lists every keyword
func (r *Repository) Keywords(ctx context.Context) ([]domain.Keyword, error) {
	return list(ctx, r, "keywords", `SELECT `+keywordColumns+` FROM keywords ORDER BY name`, scanKeyword)
}

// Communities lists the communities with the given ids
func (r *Repository) Communities(ctx context.Context, ids []string) ([]domain.Community, error) {
	if len(ids) == 0 {
		return []domain.Community{}, nil
	}
	return list(ctx, r, "communities",
		`SELECT `+communityColumns+` FROM communities WHERE id::text = ANY($1) ORDER BY name`,
		scanCommunity, ids)
}

// UpsertAchievements inserts or updates achievements
func (r *Repository) UpsertAchievements(ctx context.Context, items ...domain.Achievement) error {
	batch := &pgx.Batch{}
	for _, a := range items {
		batch.Queue(`
			INSERT INTO achievements (id, name, value, description) VALUES ($1::uuid, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = $2, value = $3, description = $4
		`, a.ID, a.Name, a.Value, a.Description)
	}
	return r.sendBatch(ctx, "achievements", batch)
}

// UpsertAvatars inserts or updates avatars
func (r *Repository) UpsertAvatars(ctx context.Context, items ...domain.Avatar) error {
	batch := &pgx.Batch{}
	for _, a := range items {
		batch.Queue(`
			INSERT INTO avatars (id, image, is_special, price) VALUES ($1::uuid, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET image = $2, is_special = $3, price = $4
		`, a.ID, a.Image, a.Special, a.Price)
	}
	return r.sendBatch(ctx, "avatars", batch)
}

// UpsertGames inserts or updates games
func (r *Repository) UpsertGames(ctx context.Context, items ...domain.Game) error {
	batch := &pgx.Batch{}
	for _, g := range items {
		batch.Queue(`
			INSERT INTO games (id, name, game_icon, category, avg_vote, description, is_popular)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = $2, game_icon = $3, category = $4, avg_vote = $5, description = $6, is_popular = $7
		`, g.ID, g.Name, g.Icon, g.Category, g.AvgVote, g.Description, g.Popular)
	}
	return r.sendBatch(ctx, "games", batch)
}

// UpsertKeywords inserts or updates keywords
func (r *Repository) UpsertKeywords(ctx context.Context, items ...domain.Keyword) error {
	batch := &pgx.Batch{}
	for _, k := range items {
		batch.Queue(`
			INSERT INTO keywords (id, name, description) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = $2, description = $3
		`, k.ID, k.Name, k.Description)
	}
	return r.sendBatch(ctx, "keywords", batch)
}

// UpsertCommunities inserts or updates communities
func (r *Repository) UpsertCommunities(ctx context.Context, items ...domain.Community) error {
	batch := &pgx.Batch{}
	for _, c := range items {
		created := c.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO communities (id, name, description, community_avatar, wallpaper, owner_id, created_at)
			VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = $2, description = $3, community_avatar = $4, wallpaper = $5, owner_id = $6
		`, c.ID, c.Name, c.Description, c.Avatar, c.Wallpaper, c.OwnerID, created)
	}
	return r.sendBatch(ctx, "communities", batch)
}

func (r *Repository) sendBatch(ctx context.Context, what string, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upserting %s: %w", what, err)
		}
	}
	return nil
}
