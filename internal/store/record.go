package store

import (
	"context"

	"github.com/dayline/dayline/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordStore struct {
	db *pgxpool.Pool
}

func NewRecordStore(db *pgxpool.Pool) *RecordStore {
	return &RecordStore{db: db}
}

// Upsert writes the daily record, replacing any prior submission for the same
// (chat_id, day). The unique constraint serializes concurrent writes for one
// key; the later write wins and no duplicate row can exist.
func (s *RecordStore) Upsert(ctx context.Context, r *domain.DailyRecord) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO daily_records (chat_id, day, sleep_hours, activity_hours, aggression, mood)
		 VALUES ($1, $2::date, $3, $4, $5, $6)
		 ON CONFLICT (chat_id, day) DO UPDATE
		 SET sleep_hours = EXCLUDED.sleep_hours,
		     activity_hours = EXCLUDED.activity_hours,
		     aggression = EXCLUDED.aggression,
		     mood = EXCLUDED.mood
		 RETURNING created_at`,
		r.ChatID, r.Day, r.SleepHours, r.ActivityHours, r.Aggression, r.Mood,
	).Scan(&r.CreatedAt)
}

func (s *RecordStore) Exists(ctx context.Context, chatID int64, day string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM daily_records WHERE chat_id = $1 AND day = $2::date)`,
		chatID, day,
	).Scan(&exists)
	return exists, err
}

func (s *RecordStore) Recent(ctx context.Context, chatID int64, limit int) ([]domain.DailyRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT chat_id, day::text, sleep_hours, activity_hours, aggression, mood, created_at
		 FROM daily_records
		 WHERE chat_id = $1
		 ORDER BY day DESC
		 LIMIT $2`,
		chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DailyRecord
	for rows.Next() {
		var r domain.DailyRecord
		if err := rows.Scan(&r.ChatID, &r.Day, &r.SleepHours, &r.ActivityHours, &r.Aggression, &r.Mood, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *RecordStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM daily_records`).Scan(&n)
	return n, err
}

func (s *RecordStore) ActiveUsersSince(ctx context.Context, day string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT chat_id) FROM daily_records WHERE day >= $1::date`,
		day,
	).Scan(&n)
	return n, err
}
