package store

import "database/sql"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS clips (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL CHECK (length(trim(name)) > 0),
  created_at INTEGER NOT NULL,
  is_favorite INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS labels (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE CHECK (length(trim(name)) > 0)
);

CREATE TABLE IF NOT EXISTS clip_labels (
  clip_id TEXT NOT NULL,
  label_id INTEGER NOT NULL,
  PRIMARY KEY (clip_id, label_id),
  FOREIGN KEY (clip_id) REFERENCES clips(id) ON DELETE CASCADE,
  FOREIGN KEY (label_id) REFERENCES labels(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_clips_created_at_desc ON clips(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_clip_labels_label ON clip_labels(label_id);
`

func bootstrapSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
