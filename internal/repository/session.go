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

const dateLayout = "2006-01-02"

const sessionColumns = `id, user_id, venue_id, play_date, title, session_type,
	total_buy_in, prize, net_profit, field_entries, is_collab, collab_label,
	created_at, updated_at`

type SessionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSessionRepository(sqlDB *sql.DB, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{db: sqlDB, logger: logger}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		session.ID = id
	}

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO game_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.VenueID,
		formatDate(session.PlayDate),
		session.Title,
		string(session.SessionType),
		session.TotalBuyIn,
		session.Prize,
		session.NetProfit,
		session.FieldEntries,
		session.IsCollab,
		session.CollabLabel,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", session.UserID).Msg("failed to insert session")
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE game_sessions
		SET venue_id = ?, play_date = ?, title = ?, session_type = ?,
		    total_buy_in = ?, prize = ?, net_profit = ?, field_entries = ?,
		    is_collab = ?, collab_label = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		session.VenueID,
		formatDate(session.PlayDate),
		session.Title,
		string(session.SessionType),
		session.TotalBuyIn,
		session.Prize,
		session.NetProfit,
		session.FieldEntries,
		session.IsCollab,
		session.CollabLabel,
		session.UpdatedAt,
		session.ID,
		session.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", session.ID, err)
	}
	return requireRow(res)
}

func (r *SessionRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM game_sessions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return requireRow(res)
}

func (r *SessionRepository) GetByID(ctx context.Context, userID, id string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE id = ? AND user_id = ?`, id, userID)

	session, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE user_id = ?
		ORDER BY play_date IS NULL, play_date, id`, userID)
}

func (r *SessionRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE user_id = ? AND play_date >= ? AND play_date <= ?
		ORDER BY play_date, id`,
		userID, from.Format(dateLayout), to.Format(dateLayout))
}

func (r *SessionRepository) ListVenueSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE user_id = ? AND venue_id IS NOT NULL
		ORDER BY play_date IS NULL, play_date, id`, userID)
}

func (r *SessionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	return r.list(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE user_id = ?
		ORDER BY play_date IS NULL, play_date DESC, id DESC
		LIMIT ?`, userID, limit)
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (domain.Session, error) {
	var (
		session     domain.Session
		venueID     sql.NullString
		playDate    sql.NullTime
		sessionType string
		buyIn       sql.NullInt64
		prize       sql.NullInt64
		profit      sql.NullInt64
		entries     sql.NullInt64
		collabLabel sql.NullString
	)

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&venueID,
		&playDate,
		&session.Title,
		&sessionType,
		&buyIn,
		&prize,
		&profit,
		&entries,
		&session.IsCollab,
		&collabLabel,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}

	session.SessionType = domain.NormalizeSessionType(sessionType)
	session.VenueID = nullString(venueID)
	session.CollabLabel = nullString(collabLabel)
	session.TotalBuyIn = nullInt64(buyIn)
	session.Prize = nullInt64(prize)
	session.NetProfit = nullInt64(profit)
	session.FieldEntries = nullInt64(entries)

	// the DATE column comes back from the driver as a time.Time already
	if playDate.Valid {
		d := playDate.Time
		session.PlayDate = &d
	}

	return session, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
