package domain

import "context"

type ProfileStore interface {
	Upsert(ctx context.Context, p *UserProfile) error
	GetByChatID(ctx context.Context, chatID int64) (*UserProfile, error)
	ListChatIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

type RecordStore interface {
	// Upsert inserts the record or replaces the existing (chat_id, day) row.
	// The uniqueness constraint guarantees at most one row per user per day
	// even under concurrent writes.
	Upsert(ctx context.Context, r *DailyRecord) error
	Exists(ctx context.Context, chatID int64, day string) (bool, error)
	// Recent returns at most limit records for the user, newest day first.
	Recent(ctx context.Context, chatID int64, limit int) ([]DailyRecord, error)
	Count(ctx context.Context) (int, error)
	// ActiveUsersSince counts distinct users with a record on or after day.
	ActiveUsersSince(ctx context.Context, day string) (int, error)
}
