package repository

import (
	"context"
	"errors"
	"time"

	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/infra"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var preferencesColumns = []string{"user_id", "reminder_enabled", "reminder_time", "channel", "updated_at"}

type PreferencesRepository struct {
	db DBTX
}

func NewPreferencesRepository(db DBTX) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) Upsert(ctx context.Context, p *user.Preferences) error {
	q := psql.Insert("user_preferences").
		Columns(preferencesColumns...).
		Values(p.UserID(), p.ReminderEnabled(), p.ReminderTime().String(), p.Channel().String(), p.UpdatedAt()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			reminder_enabled = EXCLUDED.reminder_enabled,
			reminder_time = EXCLUDED.reminder_time,
			channel = EXCLUDED.channel,
			updated_at = EXCLUDED.updated_at`)

	if _, err := exec(ctx, r.db, q); err != nil {
		return infra.WrapRepoErr("failed to upsert preferences", err)
	}
	return nil
}

func (r *PreferencesRepository) FindByUser(ctx context.Context, userID int64) (*user.Preferences, error) {
	q := psql.Select(preferencesColumns...).From("user_preferences").Where(squirrel.Eq{"user_id": userID})
	p, err := scanPreferences(queryRow(ctx, r.db, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("preferences not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find preferences", err)
	}
	return p, nil
}

func (r *PreferencesRepository) ListReminderEnabled(ctx context.Context) ([]*user.Preferences, error) {
	q := psql.Select(preferencesColumns...).From("user_preferences").Where("reminder_enabled").OrderBy("user_id")
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list preferences", err)
	}
	prefs, err := collect(rows, scanPreferences)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan preferences", err)
	}
	return prefs, nil
}

func (r *PreferencesRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := exec(ctx, r.db, psql.Delete("user_preferences").Where(squirrel.Eq{"user_id": userID})); err != nil {
		return infra.WrapRepoErr("failed to delete preferences", err)
	}
	return nil
}

func scanPreferences(row pgx.Row) (*user.Preferences, error) {
	var (
		userID    int64
		enabled   bool
		at, ch    string
		updatedAt time.Time
	)
	if err := row.Scan(&userID, &enabled, &at, &ch, &updatedAt); err != nil {
		return nil, err
	}

	reminderTime, err := user.NewReminderTime(at)
	if err != nil {
		return nil, err
	}
	channel, err := user.NewChannel(ch)
	if err != nil {
		return nil, err
	}
	return user.NewPreferences(userID, enabled, reminderTime, channel, updatedAt.UTC()), nil
}
