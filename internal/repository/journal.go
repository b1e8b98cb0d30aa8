package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pokerly/internal/constants"
	"pokerly/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const journalColumns = `id, user_id, journal_date, title, content,
	mood_score, focus_score, tilt_score, energy_score, tags,
	created_at, updated_at`

type JournalRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewJournalRepository(sqlDB *sql.DB, logger zerolog.Logger) *JournalRepository {
	return &JournalRepository{db: sqlDB, logger: logger}
}

// Upsert inserts or replaces the journal for (user, date). At most one row
// exists per user per date. The conflict branch keeps the stored row's id,
// so the id is read back rather than trusted from the insert values.
func (r *JournalRepository) Upsert(ctx context.Context, journal *domain.Journal) error {
	if journal.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		journal.ID = id
	}

	now := time.Now()
	journal.CreatedAt = now
	journal.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO game_journals (`+journalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, journal_date) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			mood_score = excluded.mood_score,
			focus_score = excluded.focus_score,
			tilt_score = excluded.tilt_score,
			energy_score = excluded.energy_score,
			tags = excluded.tags,
			updated_at = excluded.updated_at
		RETURNING id`,
		journal.ID,
		journal.UserID,
		journal.JournalDate.Format(dateLayout),
		journal.Title,
		journal.Content,
		journal.MoodScore,
		journal.FocusScore,
		journal.TiltScore,
		journal.EnergyScore,
		journal.Tags,
		journal.CreatedAt,
		journal.UpdatedAt,
	).Scan(&journal.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", journal.UserID).Msg("failed to upsert journal")
		return fmt.Errorf("failed to upsert journal: %w", err)
	}
	return nil
}

func (r *JournalRepository) GetByDate(ctx context.Context, userID string, date time.Time) (*domain.Journal, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+journalColumns+`
		FROM game_journals
		WHERE user_id = ? AND journal_date = ?`,
		userID, date.Format(dateLayout))

	journal, err := scanJournal(row)
	if err != nil {
		return nil, err
	}
	return &journal, nil
}

func (r *JournalRepository) Delete(ctx context.Context, userID string, date time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM game_journals WHERE user_id = ? AND journal_date = ?`,
		userID, date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	return requireRow(res)
}

func (r *JournalRepository) ListByUser(ctx context.Context, userID string) ([]domain.Journal, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+journalColumns+`
		FROM game_journals
		WHERE user_id = ?
		ORDER BY journal_date`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, journal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journals: %w", err)
	}
	return journals, nil
}

func scanJournal(row scanner) (domain.Journal, error) {
	var (
		journal     domain.Journal
		journalDate time.Time
		mood        sql.NullInt64
		focus       sql.NullInt64
		tilt        sql.NullInt64
		energy      sql.NullInt64
	)

	err := row.Scan(
		&journal.ID,
		&journal.UserID,
		&journalDate,
		&journal.Title,
		&journal.Content,
		&mood,
		&focus,
		&tilt,
		&energy,
		&journal.Tags,
		&journal.CreatedAt,
		&journal.UpdatedAt,
	)
	if err != nil {
		return domain.Journal{}, err
	}

	journal.JournalDate = journalDate
	journal.MoodScore = nullInt64(mood)
	journal.FocusScore = nullInt64(focus)
	journal.TiltScore = nullInt64(tilt)
	journal.EnergyScore = nullInt64(energy)

	return journal, nil
}
