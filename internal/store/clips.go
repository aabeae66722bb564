package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gifstash/internal/models"
)

const clipColumns = "id, name, created_at, is_favorite"

// Newest first; rowid breaks created_at ties in insertion order.
const clipOrder = " ORDER BY created_at DESC, rowid DESC"

// InsertClip inserts one clip row. Fails with ErrClipExists if the id is taken.
func (s *Store) InsertClip(ctx context.Context, clip *models.Clip) error {
	if clip == nil {
		return fmt.Errorf("clip is required")
	}
	if strings.TrimSpace(clip.ID) == "" {
		return fmt.Errorf("clip id is required")
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO clips ("+clipColumns+") VALUES (?, ?, ?, ?)",
		clip.ID, clip.Name, clip.CreatedAt, boolToInt(clip.IsFavorite),
	)
	if isUniqueConstraint(err, "clips.id") {
		return fmt.Errorf("%w: %s", ErrClipExists, clip.ID)
	}
	return err
}

// GetClip returns a clip by id, or nil when absent.
func (s *Store) GetClip(ctx context.Context, id string) (*models.Clip, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clipColumns+" FROM clips WHERE id = ?", id)
	return scanClip(row)
}

// ClipExists checks whether a clip row exists.
func (s *Store) ClipExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM clips WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListClips returns all clips, newest first.
func (s *Store) ListClips(ctx context.Context) ([]models.Clip, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+clipColumns+" FROM clips"+clipOrder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClips(rows)
}

// UpdateClip applies a partial update. Updating a missing clip is a no-op.
func (s *Store) UpdateClip(ctx context.Context, id string, update models.ClipUpdate) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}

	set := []string{}
	args := []any{}

	if update.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *update.Name)
	}
	if update.IsFavorite != nil {
		set = append(set, "is_favorite = ?")
		args = append(args, boolToInt(*update.IsFavorite))
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE clips SET %s WHERE id = ?", strings.Join(set, ", "))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// DeleteClip removes a clip row together with its label associations.
func (s *Store) DeleteClip(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM clip_labels WHERE clip_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// SearchClips returns clips whose name contains query, ignoring case, newest first.
//
// Matching happens in Go because SQLite's lower() only folds ASCII.
func (s *Store) SearchClips(ctx context.Context, query string) ([]models.Clip, error) {
	clips, err := s.ListClips(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matched := make([]models.Clip, 0, len(clips))
	for _, clip := range clips {
		if strings.Contains(strings.ToLower(clip.Name), needle) {
			matched = append(matched, clip)
		}
	}
	return matched, nil
}

// ClipIDs returns every clip id in the store.
func (s *Store) ClipIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM clips")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanClip(scanner interface {
	Scan(dest ...any) error
}) (*models.Clip, error) {
	var clip models.Clip
	var favorite int
	if err := scanner.Scan(&clip.ID, &clip.Name, &clip.CreatedAt, &favorite); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	clip.IsFavorite = favorite != 0
	return &clip, nil
}

func scanClips(rows *sql.Rows) ([]models.Clip, error) {
	clips := []models.Clip{}
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, *clip)
	}
	return clips, rows.Err()
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
