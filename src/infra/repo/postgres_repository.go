package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pokedex/src/core/domain"
	"pokedex/src/core/ports"
	"pokedex/src/infra/db"
)

var _ ports.PokemonRepository = (*PostgresRepository)(nil)

// PostgresRepository implements PokemonRepository on a single table whose
// array and stats columns are JSONB. Ids are generated as object id hex
// strings so they look the same as on the mongo backend.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	table string
	log   *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, table string, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool:  pg.Pool,
		table: pgx.Identifier{table}.Sanitize(),
		log:   log,
	}
}

const pokemonColumns = `id, name, thumbnail_url, large_image_url, types, abilities, stats, created_at, updated_at`

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema creates the table, its constraints and indexes. The UNIQUE
// constraint on name is the authority for duplicate names; the CHECK
// constraints mirror the field rules.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	quoted := make([]string, len(domain.PokemonTypes))
	for i, t := range domain.PokemonTypes {
		quoted[i] = `"` + t + `"`
	}
	validTypes := "[" + strings.Join(quoted, ",") + "]"

	statCheck := func(key string) string {
		return fmt.Sprintf(`jsonb_typeof(stats->'%[1]s') = 'number' AND (stats->>'%[1]s')::numeric >= 1 AND (stats->>'%[1]s')::numeric = floor((stats->>'%[1]s')::numeric)`, key)
	}
	stats := []string{"hp", "attack", "defense", "specialAttack", "specialDefense", "speed"}
	statChecks := make([]string, len(stats))
	for i, s := range stats {
		statChecks[i] = statCheck(s)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			seq             BIGSERIAL,
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL UNIQUE CHECK (length(name) > 0),
			thumbnail_url   TEXT NOT NULL CHECK (thumbnail_url ~ '^https?://.+'),
			large_image_url TEXT NOT NULL CHECK (large_image_url ~ '^https?://.+'),
			types           JSONB NOT NULL CHECK (
				jsonb_typeof(types) = 'array'
				AND jsonb_array_length(types) > 0
				AND types <@ '%[2]s'::jsonb
			),
			abilities       JSONB NOT NULL CHECK (
				jsonb_typeof(abilities) = 'array'
				AND jsonb_array_length(abilities) > 0
			),
			stats           JSONB NOT NULL CHECK (%[3]s),
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS %[4]s ON %[1]s USING GIN (types);
		CREATE INDEX IF NOT EXISTS %[5]s ON %[1]s USING GIN (abilities);
	`,
		r.table,
		validTypes,
		strings.Join(statChecks, " AND "),
		pgx.Identifier{strings.Trim(r.table, `"`) + "_types_idx"}.Sanitize(),
		pgx.Identifier{strings.Trim(r.table, `"`) + "_abilities_idx"}.Sanitize(),
	)

	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// whereClause renders the filter as a WHERE clause. jsonb ?| matches when any
// of the given strings is an element of the array.
func whereClause(f domain.PokemonFilter, args []any) (string, []any) {
	var conds []string
	if len(f.Types) > 0 {
		args = append(args, f.Types)
		conds = append(conds, fmt.Sprintf("types ?| $%d", len(args)))
	}
	if len(f.Abilities) > 0 {
		args = append(args, f.Abilities)
		conds = append(conds, fmt.Sprintf("abilities ?| $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) FindMany(ctx context.Context, filter domain.PokemonFilter, page domain.Page) ([]domain.PokemonSummary, error) {
	where, args := whereClause(filter, nil)
	args = append(args, page.Limit, page.Skip())
	q := fmt.Sprintf(`
		SELECT id, name, types, thumbnail_url
		FROM %s%s
		ORDER BY seq
		LIMIT $%d OFFSET $%d
	`, r.table, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, r.translate(err, "find pokemon")
	}
	defer rows.Close()

	out := []domain.PokemonSummary{}
	for rows.Next() {
		var s domain.PokemonSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Types, &s.ThumbnailURL); err != nil {
			return nil, r.translate(err, "scan pokemon")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate(err, "iterate pokemon")
	}
	return out, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter domain.PokemonFilter) (int64, error) {
	where, args := whereClause(filter, nil)
	q := fmt.Sprintf(`SELECT count(*) FROM %s%s`, r.table, where)

	var n int64
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, r.translate(err, "count pokemon")
	}
	return n, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.NewInvalidIDError()
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, pokemonColumns, r.table)
	return r.queryOne(ctx, "find pokemon by id", q, id)
}

func (r *PostgresRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Pokemon, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1 AND id <> $2`, pokemonColumns, r.table)
	return r.queryOne(ctx, "find pokemon by name", q, name, excludeID)
}

func (r *PostgresRepository) Create(ctx context.Context, in domain.PokemonInput) (*domain.Pokemon, error) {
	q := fmt.Sprintf(`
		INSERT INTO %s (id, name, thumbnail_url, large_image_url, types, abilities, stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, r.table, pokemonColumns)
	return r.queryOne(ctx, "insert pokemon", q, insertArgs(in)...)
}

// InsertMany skips names that already exist and reports how many rows landed.
func (r *PostgresRepository) InsertMany(ctx context.Context, in []domain.PokemonInput) (int, error) {
	q := fmt.Sprintf(`
		INSERT INTO %s (id, name, thumbnail_url, large_image_url, types, abilities, stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING
	`, r.table)

	batch := &pgx.Batch{}
	for _, pk := range in {
		batch.Queue(q, insertArgs(pk)...)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range in {
		tag, err := br.Exec()
		if err != nil {
			return inserted, r.translate(err, "insert many pokemon")
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, patch domain.PokemonPatch) (*domain.Pokemon, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.NewInvalidIDError()
	}

	args := []any{id}
	sets := []string{"updated_at = now()"}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.ThumbnailURL != nil {
		set("thumbnail_url", *patch.ThumbnailURL)
	}
	if patch.LargeImageURL != nil {
		set("large_image_url", *patch.LargeImageURL)
	}
	if patch.Types != nil {
		set("types", patch.Types)
	}
	if patch.Abilities != nil {
		set("abilities", patch.Abilities)
	}
	if patch.Stats != nil {
		set("stats", *patch.Stats)
	}

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		r.table, strings.Join(sets, ", "), pokemonColumns)
	return r.queryOne(ctx, "update pokemon", q, args...)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.NewInvalidIDError()
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return r.translate(err, "delete pokemon")
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("Pokemon")
	}
	return nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, op, q string, args ...any) (*domain.Pokemon, error) {
	var (
		pk                   domain.Pokemon
		createdAt, updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&pk.ID, &pk.Name, &pk.ThumbnailURL, &pk.LargeImageURL,
		&pk.Types, &pk.Abilities, &pk.Stats, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, r.translate(err, op)
	}
	pk.CreatedAt = createdAt.UTC()
	pk.UpdatedAt = updatedAt.UTC()
	return &pk, nil
}

func insertArgs(in domain.PokemonInput) []any {
	return []any{
		primitive.NewObjectID().Hex(),
		in.Name,
		in.ThumbnailURL,
		in.LargeImageURL,
		in.Types,
		in.Abilities,
		in.Stats,
	}
}

// translate maps pgx errors onto domain errors; anything unrecognised is
// wrapped with op and left for the HTTP layer to report as internal.
func (r *PostgresRepository) translate(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFoundError("Pokemon")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return domain.NewDuplicateNameError()
		case "23514", "23502": // check_violation, not_null_violation
			return domain.NewValidationError("Document failed validation")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
