package remindlog

import (
	"context"
	"database/sql"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/remindlog"
	"remindbot/internal/db"

	"github.com/jackc/pgx/v4"
)

const columns = `id, user_id, user_name, text, title, start_at, created_at`

const createEntry = `
INSERT INTO remind_log (user_id, user_name, text, title, start_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + columns

const readLatest = `
SELECT ` + columns + `
FROM remind_log
ORDER BY created_at DESC, id DESC
LIMIT $1`

type PgxRemindLogRepository struct {
	db db.DBTX
}

func NewPgxRemindLogRepository(db db.DBTX) *PgxRemindLogRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxRemindLogRepository{db: db}
}

func (r *PgxRemindLogRepository) Create(
	ctx context.Context,
	input remindlog.CreateInput,
) (remindlog.Entry, error) {
	row := r.db.QueryRow(
		ctx,
		createEntry,
		string(input.UserID),
		input.UserName,
		input.Text,
		input.Title,
		sql.NullTime{Time: input.StartAt.Value, Valid: input.StartAt.IsPresent},
		input.CreatedAt,
	)
	return scanEntry(row)
}

func (r *PgxRemindLogRepository) ReadLatest(ctx context.Context, limit uint) ([]remindlog.Entry, error) {
	rows, err := r.db.Query(ctx, readLatest, int64(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]remindlog.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (entry remindlog.Entry, err error) {
	var (
		id      int64
		userID  string
		startAt sql.NullTime
	)
	err = row.Scan(&id, &userID, &entry.UserName, &entry.Text, &entry.Title, &startAt, &entry.CreatedAt)
	if err != nil {
		return entry, err
	}
	entry.ID = remindlog.ID(id)
	entry.UserID = chat.UserID(userID)
	entry.StartAt = c.NewOptional(startAt.Time.UTC(), startAt.Valid)
	entry.CreatedAt = entry.CreatedAt.UTC()
	return entry, nil
}
