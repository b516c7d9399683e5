package team

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

var (
	ErrNotFound   = errors.New("team not found")
	ErrReferenced = errors.New("team referenced by matches")
)

// Postgres persiste os times. Identidade imutável; apenas o nome é
// editável e só por admin (imposto na rota).
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Create(ctx context.Context, name string) (domain.Team, error) {
	t := domain.Team{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, created_at) VALUES ($1,$2,$3)`,
		t.ID, t.Name, t.CreatedAt)
	if err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

func (p *Postgres) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Team{}, ErrNotFound
	}
	return t, err
}

func (p *Postgres) Rename(ctx context.Context, id, name string) (domain.Team, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE teams SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		return domain.Team{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Team{}, ErrNotFound
	}
	return p.Get(ctx, id)
}

// Delete remove um time ainda não referenciado por partidas
func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrReferenced
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
