package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/jackc/pgx/v5"
)

// setTable maps one of the gamer's id sets to its join table
type setTable struct {
	table  string
	column string
	cast   string
	set    func(*domain.Gamer) *domain.IDSet
}

var setTables = []setTable{
	{"gamer_earned_achievements", "achievement_id", "::uuid", func(g *domain.Gamer) *domain.IDSet { return &g.EarnedAchievements }},
	{"gamer_collected_achievements", "achievement_id", "::uuid", func(g *domain.Gamer) *domain.IDSet { return &g.CollectedAchievements }},
	{"bought_avatars", "avatar_id", "::uuid", func(g *domain.Gamer) *domain.IDSet { return &g.BoughtAvatars }},
	{"gamer_games_join", "game_id", "", func(g *domain.Gamer) *domain.IDSet { return &g.LikedGames }},
	{"gamer_keywords_join", "keyword_id", "", func(g *domain.Gamer) *domain.IDSet { return &g.Keywords }},
	{"gamer_communities", "community_id", "::uuid", func(g *domain.Gamer) *domain.IDSet { return &g.JoinedCommunities }},
}

func (t setTable) selectSQL() string {
	return fmt.Sprintf(`SELECT %s::text FROM %s WHERE gamer_id = $1`, t.column, t.table)
}

func (t setTable) deleteSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE gamer_id = $1`, t.table)
}

func (t setTable) insertSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (gamer_id, %s) VALUES ($1, $2%s) ON CONFLICT DO NOTHING`, t.table, t.column, t.cast)
}

const gamerColumns = `id, username, email, password_hash, age, country, gender, coin,
	COALESCE(avatar_id, ''), fcm_token, last_modified`

const relationsQuery = `
	SELECT CASE WHEN user_low = $1 THEN user_high ELSE user_low END AS peer, state
	FROM gamer_relations
	WHERE user_low = $1 OR user_high = $1
`

func scanGamer(row pgx.Row) (*domain.Gamer, error) {
	g := &domain.Gamer{}
	err := row.Scan(
		&g.ID,
		&g.Username,
		&g.Email,
		&g.PasswordHash,
		&g.Age,
		&g.Country,
		&g.Gender,
		&g.Coin,
		&g.AvatarID,
		&g.FCMToken,
		&g.LastModified,
	)
	if err != nil {
		return nil, err
	}
	return g.Normalize(), nil
}

// loadRelations reads the stored pair states of a gamer keyed by peer
func loadRelations(ctx context.Context, q querier, gamerID string, forUpdate bool) (map[string]domain.Relation, error) {
	query := relationsQuery
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, gamerID)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	relations := make(map[string]domain.Relation)
	for rows.Next() {
		var peer string
		var state int16
		if err := rows.Scan(&peer, &state); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		relations[peer] = domain.Relation(state)
	}
	return relations, rows.Err()
}

// hydrate fills the relation and join-table sets of g in one batch
func (r *Repository) hydrate(ctx context.Context, q querier, g *domain.Gamer) error {
	relations, err := loadRelations(ctx, q, g.ID, false)
	if err != nil {
		return err
	}
	domain.ApplyRelations(g, relations)

	batch := &pgx.Batch{}
	for _, t := range setTables {
		batch.Queue(t.selectSQL(), g.ID)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()

	for _, t := range setTables {
		rows, err := br.Query()
		if err != nil {
			return fmt.Errorf("querying %s: %w", t.table, err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("scanning %s: %w", t.table, err)
		}
		*t.set(g) = domain.NewIDSet(ids...)
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, where string, arg any) (*domain.Gamer, error) {
	query := `SELECT ` + gamerColumns + ` FROM gamers WHERE ` + where
	g, err := scanGamer(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting gamer: %w", err)
	}
	if err := r.hydrate(ctx, r.pool, g); err != nil {
		return nil, fmt.Errorf("loading gamer sets: %w", err)
	}
	return g, nil
}

// FindByID retrieves a gamer aggregate by id
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Gamer, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByEmail retrieves a gamer aggregate by email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Gamer, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Gamer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing gamers: %w", err)
	}
	gamers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Gamer, error) {
		return scanGamer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning gamer: %w", err)
	}

	for _, g := range gamers {
		if err := r.hydrate(ctx, r.pool, g); err != nil {
			return nil, fmt.Errorf("loading gamer sets: %w", err)
		}
	}
	return gamers, nil
}

// FindByIDs retrieves the gamers that exist among ids
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Gamer, error) {
	if len(ids) == 0 {
		return []*domain.Gamer{}, nil
	}
	return r.findMany(ctx, `SELECT `+gamerColumns+` FROM gamers WHERE id = ANY($1) ORDER BY id`, ids)
}

// FindAll retrieves every gamer
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Gamer, error) {
	return r.findMany(ctx, `SELECT `+gamerColumns+` FROM gamers ORDER BY id`)
}

// Save upserts the gamers in one transaction. Each gamer rewrites only the
// relation bits it owns, so the shared friendship bit stays symmetric.
func (r *Repository) Save(ctx context.Context, gamers ...*domain.Gamer) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, g := range gamers {
		g.Normalize()
		if err := saveGamer(ctx, tx, g); err != nil {
			return fmt.Errorf("saving gamer %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func saveGamer(ctx context.Context, tx pgx.Tx, g *domain.Gamer) error {
	var avatarID *string
	if g.AvatarID != "" {
		avatarID = &g.AvatarID
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO gamers (id, username, email, password_hash, age, country, gender, coin, avatar_id, fcm_token, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			username = $2, email = $3, password_hash = $4, age = $5, country = $6,
			gender = $7, coin = $8, avatar_id = $9, fcm_token = $10, last_modified = $11
	`,
		g.ID, g.Username, g.Email, g.PasswordHash, g.Age, g.Country,
		g.Gender, g.Coin, avatarID, g.FCMToken, g.LastModified,
	)
	if err != nil {
		return fmt.Errorf("upserting gamer: %w", err)
	}

	stored, err := loadRelations(ctx, tx, g.ID, true)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for peer, state := range domain.MergeGamer(g, stored) {
		low, high := domain.Pair(g.ID, peer)
		if state == 0 {
			batch.Queue(`DELETE FROM gamer_relations WHERE user_low = $1 AND user_high = $2`, low, high)
			continue
		}
		batch.Queue(`
			INSERT INTO gamer_relations (user_low, user_high, state, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_low, user_high) DO UPDATE SET state = $3, updated_at = $4
		`, low, high, int16(state), g.LastModified)
	}

	for _, t := range setTables {
		batch.Queue(t.deleteSQL(), g.ID)
		for _, id := range t.set(g).Slice() {
			batch.Queue(t.insertSQL(), g.ID, id)
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("writing gamer relations: %w", err)
		}
	}
	return br.Close()
}
