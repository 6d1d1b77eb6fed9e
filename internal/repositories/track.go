package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/shared"
)

const trackColumns = `id, sequence, slug, title, description, created_ago, duration_display, audio_url, image_url,
	comment_count, detail_url, username, display_name, profile_url, avatar, created_at, updated_at, deleted_at`

// TrackRepository implements models.Repository[*models.CachedTrack] for the feed cache.
type TrackRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.CachedTrack] = (*TrackRepository)(nil)

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.CachedTrack] into the database with generated ID and sequence
func (r *TrackRepository) Create(track *models.CachedTrack) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	track.SetID(shared.GenerateID())
	track.SetSequence(sequence)

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	t := track.Track()
	query := `
		INSERT INTO tracks (id, sequence, slug, title, description, created_ago, duration_display, audio_url, image_url,
			comment_count, detail_url, username, display_name, profile_url, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID(),
		sequence,
		t.Slug,
		t.Title,
		t.Description,
		t.CreatedAgo,
		t.DurationDisplay,
		t.AudioURL,
		t.ImageURL,
		t.CommentCount,
		t.DetailURL,
		t.Profile.Username,
		t.Profile.DisplayName,
		t.Profile.URL,
		t.Profile.Avatar,
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(id string) (*models.CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ? AND deleted_at IS NULL`
	return scanTrack(r.db.QueryRow(query, id))
}

// GetBySlug retrieves a track by slug, excluding soft-deleted tracks
func (r *TrackRepository) GetBySlug(slug string) (*models.CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE slug = ? AND deleted_at IS NULL`
	return scanTrack(r.db.QueryRow(query, slug))
}

// Update refreshes the summary of an existing track.
func (r *TrackRepository) Update(track *models.CachedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	t := track.Track()
	query := `
		UPDATE tracks
		SET title = ?, description = ?, created_ago = ?, duration_display = ?, audio_url = ?, image_url = ?,
			comment_count = ?, detail_url = ?, username = ?, display_name = ?, profile_url = ?, avatar = ?,
			updated_at = ?, deleted_at = NULL
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		t.Title,
		t.Description,
		t.CreatedAgo,
		t.DurationDisplay,
		t.AudioURL,
		t.ImageURL,
		t.CommentCount,
		t.DetailURL,
		t.Profile.Username,
		t.Profile.DisplayName,
		t.Profile.URL,
		t.Profile.Avatar,
		now,
		track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	return expectRows(result, track.ID())
}

// Upsert caches summary, updating the existing row for its slug (restoring it when deleted)
// or inserting a new one. It reports whether a row was inserted.
func (r *TrackRepository) Upsert(summary models.TrackSummary) (*models.CachedTrack, bool, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE slug = ?`
	existing, err := scanTrack(r.db.QueryRow(query, summary.Slug))
	switch {
	case err == nil:
		existing.SetTrack(summary)
		existing.SetDeletedAt(nil)
		if err := r.Update(existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case errors.Is(err, shared.ErrTrackNotFound):
		track := models.NewCachedTrack(0, summary)
		if err := r.Create(track); err != nil {
			return nil, false, err
		}
		return track, true, nil
	default:
		return nil, false, err
	}
}

// Delete soft-deletes a track by ID
func (r *TrackRepository) Delete(id string) error {
	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	return expectRows(result, id)
}

// Clear soft-deletes every cached track and returns how many were removed.
func (r *TrackRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`UPDATE tracks SET deleted_at = ? WHERE deleted_at IS NULL`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// Count returns the number of cached tracks, excluding soft-deleted tracks.
func (r *TrackRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tracks WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// List retrieves all tracks matching the given criteria, excluding soft-deleted tracks.
//
// Supported criteria: "username" (string) and "limit" (int).
func (r *TrackRepository) List(criteria map[string]any) ([]*models.CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE deleted_at IS NULL`
	args := []any{}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTrack scans a single row into a [models.CachedTrack]
func scanTrack(row scanner) (*models.CachedTrack, error) {
	var (
		id        string
		sequence  int
		t         models.TrackSummary
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &t.Slug, &t.Title, &t.Description, &t.CreatedAgo, &t.DurationDisplay,
		&t.AudioURL, &t.ImageURL, &t.CommentCount, &t.DetailURL, &t.Profile.Username, &t.Profile.DisplayName,
		&t.Profile.URL, &t.Profile.Avatar, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track := models.NewCachedTrack(sequence, t)
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}

func expectRows(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return nil
}
