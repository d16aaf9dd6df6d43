package store

import (
	"context"
	"errors"

	"github.com/dayline/dayline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Upsert(ctx context.Context, p *domain.UserProfile) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO profiles (chat_id, full_name, age)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (chat_id) DO UPDATE
		 SET full_name = EXCLUDED.full_name, age = EXCLUDED.age, updated_at = NOW()
		 RETURNING created_at, updated_at`,
		p.ChatID, p.FullName, p.Age,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (s *ProfileStore) GetByChatID(ctx context.Context, chatID int64) (*domain.UserProfile, error) {
	p := &domain.UserProfile{}
	err := s.db.QueryRow(ctx,
		`SELECT chat_id, full_name, age, created_at, updated_at
		 FROM profiles WHERE chat_id = $1`,
		chatID,
	).Scan(&p.ChatID, &p.FullName, &p.Age, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProfileStore) ListChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT chat_id FROM profiles ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ProfileStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}
