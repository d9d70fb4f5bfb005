package reminder

import (
	"context"
	"errors"
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/db"
	"time"

	"github.com/jackc/pgx/v4"
)

const columns = `id, user_id, channel_id, title, execute_at, remind_before_minutes, remind_at,
	created_at, updated_at, is_reminded`

const createReminder = `
INSERT INTO reminder (
	user_id, channel_id, title, execute_at, remind_before_minutes, remind_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
RETURNING ` + columns

const readReminders = `
SELECT ` + columns + `
FROM reminder
WHERE
	($1::boolean OR user_id = $2)
	AND ($3::boolean OR is_reminded = $4)
	AND ($5::boolean OR remind_at <= $6)
ORDER BY
	CASE WHEN $7::boolean THEN id END ASC,
	CASE WHEN $8::boolean THEN remind_at END ASC,
	id ASC
LIMIT CASE WHEN $9::boolean THEN NULL ELSE $10::bigint END`

const markReminded = `
UPDATE reminder
SET is_reminded = TRUE, updated_at = $2
WHERE id = $1 AND NOT is_reminded
RETURNING ` + columns

const reminderExists = `SELECT EXISTS (SELECT 1 FROM reminder WHERE id = $1)`

type PgxReminderRepository struct {
	db db.DBTX
}

func NewPgxReminderRepository(db db.DBTX) *PgxReminderRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxReminderRepository{db: db}
}

func (r *PgxReminderRepository) Create(
	ctx context.Context,
	input reminder.CreateInput,
) (rem reminder.Reminder, err error) {
	row := r.db.QueryRow(
		ctx,
		createReminder,
		string(input.UserID),
		string(input.ChannelID),
		input.Title,
		input.ExecuteAt,
		int64(input.RemindBeforeMinutes),
		input.RemindAt,
		input.CreatedAt,
	)
	return scanReminder(row)
}

func (r *PgxReminderRepository) Read(
	ctx context.Context,
	options reminder.ReadOptions,
) (reminders []reminder.Reminder, err error) {
	rows, err := r.db.Query(
		ctx,
		readReminders,
		!options.UserIDEquals.IsPresent,
		string(options.UserIDEquals.Value),
		!options.IsReminded.IsPresent,
		options.IsReminded.Value,
		!options.RemindAtNotAfter.IsPresent,
		options.RemindAtNotAfter.Value,
		options.OrderBy == reminder.OrderByIDAsc,
		options.OrderBy == reminder.OrderByRemindAtAsc,
		!options.Limit.IsPresent,
		int64(options.Limit.Value),
	)
	if err != nil {
		return reminders, err
	}
	defer rows.Close()

	reminders = make([]reminder.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return reminders, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *PgxReminderRepository) MarkReminded(
	ctx context.Context,
	id reminder.ID,
	at time.Time,
) (rem reminder.Reminder, err error) {
	rem, err = scanReminder(r.db.QueryRow(ctx, markReminded, int64(id), at))
	if err == nil {
		return rem, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return rem, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, reminderExists, int64(id)).Scan(&exists); err != nil {
		return rem, err
	}
	if exists {
		return rem, reminder.ErrReminderAlreadySent
	}
	return rem, reminder.ErrReminderDoesNotExist
}

func scanReminder(row pgx.Row) (rem reminder.Reminder, err error) {
	var (
		id                  int64
		userID              string
		channelID           string
		remindBeforeMinutes int64
	)
	err = row.Scan(
		&id,
		&userID,
		&channelID,
		&rem.Title,
		&rem.ExecuteAt,
		&remindBeforeMinutes,
		&rem.RemindAt,
		&rem.CreatedAt,
		&rem.UpdatedAt,
		&rem.IsReminded,
	)
	if err != nil {
		return rem, err
	}

	rem.ID = reminder.ID(id)
	rem.UserID = chat.UserID(userID)
	rem.ChannelID = chat.ChannelID(channelID)
	rem.RemindBeforeMinutes = uint32(remindBeforeMinutes)
	rem.ExecuteAt = rem.ExecuteAt.UTC()
	rem.RemindAt = rem.RemindAt.UTC()
	rem.CreatedAt = rem.CreatedAt.UTC()
	rem.UpdatedAt = rem.UpdatedAt.UTC()
	return rem, rem.Validate()
}
