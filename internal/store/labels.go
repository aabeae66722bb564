package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"gifstash/internal/models"
)

// InsertLabel creates a label. Fails with ErrLabelExists on a duplicate name.
func (s *Store) InsertLabel(ctx context.Context, name string) (*models.Label, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO labels (name) VALUES (?)", name)
	if isUniqueConstraint(err, "labels.name") {
		return nil, fmt.Errorf("%w: %s", ErrLabelExists, name)
	}
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Label{ID: id, Name: name}, nil
}

// GetLabel returns a label by id, or nil when absent.
func (s *Store) GetLabel(ctx context.Context, id int64) (*models.Label, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name FROM labels WHERE id = ?", id)
	return scanLabel(row)
}

// GetLabelByName returns the label with exactly this name, or nil.
func (s *Store) GetLabelByName(ctx context.Context, name string) (*models.Label, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name FROM labels WHERE name = ?", name)
	return scanLabel(row)
}

// ListLabels returns all labels ordered by name.
func (s *Store) ListLabels(ctx context.Context) ([]models.Label, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM labels ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabels(rows)
}

// UpdateLabel renames a label. Renaming a missing label is a no-op.
func (s *Store) UpdateLabel(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE labels SET name = ? WHERE id = ?", name, id)
	if isUniqueConstraint(err, "labels.name") {
		return fmt.Errorf("%w: %s", ErrLabelExists, name)
	}
	return err
}

// DeleteLabel removes a label together with its clip associations.
func (s *Store) DeleteLabel(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM clip_labels WHERE label_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM labels WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AttachLabel links a label to a clip. Attaching twice is a no-op; a missing
// clip or label yields ErrNotFound.
func (s *Store) AttachLabel(ctx context.Context, clipID string, labelID int64) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO clip_labels (clip_id, label_id) VALUES (?, ?)", clipID, labelID)
	if isForeignKeyConstraint(err) {
		return fmt.Errorf("%w: clip %s or label %d", ErrNotFound, clipID, labelID)
	}
	return err
}

// DetachLabel unlinks a label from a clip. Detaching a missing pair is a no-op.
func (s *Store) DetachLabel(ctx context.Context, clipID string, labelID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM clip_labels WHERE clip_id = ? AND label_id = ?", clipID, labelID)
	return err
}

// LabelsForClip returns the labels attached to a clip, ordered by name.
func (s *Store) LabelsForClip(ctx context.Context, clipID string) ([]models.Label, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name FROM labels l
		JOIN clip_labels cl ON cl.label_id = l.id
		WHERE cl.clip_id = ?
		ORDER BY l.name ASC, l.id ASC
	`, clipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabels(rows)
}

// labelsQueryChunk bounds the IN list of one LabelsForClips query, keeping it
// well under SQLite's host parameter limit.
var labelsQueryChunk = 500

// LabelsForClips returns labels mapped by clip id, each list ordered by name.
func (s *Store) LabelsForClips(ctx context.Context, clipIDs []string) (map[string][]models.Label, error) {
	labels := make(map[string][]models.Label)
	for start := 0; start < len(clipIDs); start += labelsQueryChunk {
		end := min(start+labelsQueryChunk, len(clipIDs))
		if err := s.collectLabels(ctx, clipIDs[start:end], labels); err != nil {
			return nil, err
		}
	}

	for _, list := range labels {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Name == list[j].Name {
				return list[i].ID < list[j].ID
			}
			return list[i].Name < list[j].Name
		})
	}
	return labels, nil
}

func (s *Store) collectLabels(ctx context.Context, clipIDs []string, into map[string][]models.Label) error {
	query := fmt.Sprintf(`
		SELECT cl.clip_id, l.id, l.name FROM labels l
		JOIN clip_labels cl ON cl.label_id = l.id
		WHERE cl.clip_id IN (%s)
	`, placeholders(len(clipIDs)))
	args := make([]any, 0, len(clipIDs))
	for _, id := range clipIDs {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var clipID string
		var label models.Label
		if err := rows.Scan(&clipID, &label.ID, &label.Name); err != nil {
			return err
		}
		into[clipID] = append(into[clipID], label)
	}
	return rows.Err()
}

// ClipIDsForLabel returns the ids of clips carrying a label.
func (s *Store) ClipIDsForLabel(ctx context.Context, labelID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cl.clip_id FROM clip_labels cl
		JOIN clips c ON c.id = cl.clip_id
		WHERE cl.label_id = ?
		ORDER BY c.created_at DESC, c.rowid DESC
	`, labelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanLabel(scanner interface {
	Scan(dest ...any) error
}) (*models.Label, error) {
	var label models.Label
	if err := scanner.Scan(&label.ID, &label.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &label, nil
}

func scanLabels(rows *sql.Rows) ([]models.Label, error) {
	labels := []models.Label{}
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *label)
	}
	return labels, rows.Err()
}
