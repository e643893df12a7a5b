package materials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectColumns = `id, chat_id, position, name, kind, params, color, created_at`

// Create appends m at the end of the chat's list.
func (r *Repo) Create(ctx context.Context, m Material) (*Material, error) {
	return insert(ctx, r.pool, m)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insert(ctx context.Context, q querier, m Material) (*Material, error) {
	raw, err := json.Marshal(m.Params)
	if err != nil {
		return nil, err
	}
	row := q.QueryRow(ctx, `
		INSERT INTO materials (chat_id, position, name, kind, params, color)
		VALUES ($1,
		        (SELECT COALESCE(MAX(position)+1, 0) FROM materials WHERE chat_id = $1),
		        $2, $3, $4, $5)
		RETURNING `+selectColumns,
		m.ChatID, m.Name, string(m.Kind), raw, m.Color)
	out, err := scanMaterial(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, m.Name)
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) List(ctx context.Context, chatID int64) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM materials
		WHERE chat_id = $1
		ORDER BY position, id
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Collection loads the chat's materials in display order.
func (r *Repo) Collection(ctx context.Context, chatID int64) (*Collection, error) {
	list, err := r.List(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return NewCollection(list...)
}

func (r *Repo) GetByID(ctx context.Context, chatID, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM materials
		WHERE chat_id = $1 AND id = $2
	`, chatID, id)
	m, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Delete removes one material and closes the gap it leaves in the positions.
func (r *Repo) Delete(ctx context.Context, chatID, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var pos int
	err = tx.QueryRow(ctx,
		`DELETE FROM materials WHERE chat_id = $1 AND id = $2 RETURNING position`,
		chatID, id).Scan(&pos)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE materials SET position = position - 1 WHERE chat_id = $1 AND position > $2`,
		chatID, pos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) DeleteAll(ctx context.Context, chatID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE chat_id = $1`, chatID)
	return err
}

// Replace swaps the chat's whole list for ms in one transaction.
func (r *Repo) Replace(ctx context.Context, chatID int64, ms []Material) ([]Material, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM materials WHERE chat_id = $1`, chatID); err != nil {
		return nil, err
	}
	out := make([]Material, 0, len(ms))
	for _, m := range ms {
		m.ChatID = chatID
		saved, err := insert(ctx, tx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMaterial(row pgx.Row) (*Material, error) {
	var (
		m    Material
		kind string
		raw  []byte
	)
	if err := row.Scan(&m.ID, &m.ChatID, &m.Position, &m.Name, &kind, &raw, &m.Color, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Kind = Kind(kind)
	m.Params = map[string]float64{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.Params); err != nil {
			return nil, fmt.Errorf("material %d params: %w", m.ID, err)
		}
	}
	return &m, nil
}
