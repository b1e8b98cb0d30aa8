package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pokerly/internal/constants"
	"pokerly/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const venueColumns = `id, user_id, name, location, notes, venue_type,
	point_balance, created_at, updated_at`

type VenueRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewVenueRepository(sqlDB *sql.DB, logger zerolog.Logger) *VenueRepository {
	return &VenueRepository{db: sqlDB, logger: logger}
}

func (r *VenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	if venue.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		venue.ID = id
	}
	if venue.VenueType == "" {
		venue.VenueType = "USER_PRIVATE"
	}

	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO venues (`+venueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		venue.ID,
		venue.UserID,
		venue.Name,
		venue.Location,
		venue.Notes,
		venue.VenueType,
		venue.PointBalance,
		venue.CreatedAt,
		venue.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", venue.UserID).Msg("failed to insert venue")
		return fmt.Errorf("failed to insert venue: %w", err)
	}
	return nil
}

func (r *VenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	venue.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE venues
		SET name = ?, location = ?, notes = ?, point_balance = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		venue.Name,
		venue.Location,
		venue.Notes,
		venue.PointBalance,
		venue.UpdatedAt,
		venue.ID,
		venue.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update venue %s: %w", venue.ID, err)
	}
	return requireRow(res)
}

func (r *VenueRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM venues WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete venue %s: %w", id, err)
	}
	return requireRow(res)
}

func (r *VenueRepository) GetByID(ctx context.Context, userID, id string) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE id = ? AND user_id = ?`, id, userID)

	venue, err := scanVenue(row)
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *VenueRepository) ListByUser(ctx context.Context, userID string) ([]domain.Venue, error) {
	return r.list(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE user_id = ?
		ORDER BY name, id`, userID)
}

// ListWithPoints returns the user's venues holding a positive point
// balance, largest balance first.
func (r *VenueRepository) ListWithPoints(ctx context.Context, userID string) ([]domain.Venue, error) {
	return r.list(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE user_id = ? AND point_balance > 0
		ORDER BY point_balance DESC, id`, userID)
}

// NamesByIDs resolves venue ids to display names in one query. Ids with no
// matching row are simply absent from the result map.
func (r *VenueRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM venues WHERE id IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query venue names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venue names: %w", err)
	}
	return names, nil
}

func (r *VenueRepository) list(ctx context.Context, query string, args ...any) ([]domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	venues := []domain.Venue{}
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venues: %w", err)
	}
	return venues, nil
}

func scanVenue(row scanner) (domain.Venue, error) {
	var venue domain.Venue
	err := row.Scan(
		&venue.ID,
		&venue.UserID,
		&venue.Name,
		&venue.Location,
		&venue.Notes,
		&venue.VenueType,
		&venue.PointBalance,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	)
	if err != nil {
		return domain.Venue{}, err
	}
	return venue, nil
}
