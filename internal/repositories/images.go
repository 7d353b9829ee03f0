package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"imagehound/internal/models"
	"imagehound/internal/shared"
)

// ImageRepository persists harvested image records.
type ImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new ImageRepository with the given database connection
func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Insert writes a single validated record. Each insert commits immediately;
// there is no batching, so a failed insert loses exactly one item.
func (r *ImageRepository) Insert(record *models.ImageRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidRecord, err)
	}

	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var createdAt any
	if record.CreatedAt != nil {
		createdAt = record.CreatedAt.UTC()
	}

	query := `
		INSERT INTO images (id, url, hash, createdAt, postId, username, web_url, tags, user_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID,
		record.URL,
		record.Hash,
		createdAt,
		record.PostID,
		record.Username,
		record.WebURL,
		string(tags),
		record.UserComment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// LoadDedupKeys bulk-reads every stored (tags, user_comment) pair. Called
// once at startup to seed the in-memory duplicate set.
func (r *ImageRepository) LoadDedupKeys() ([]models.DedupKey, error) {
	rows, err := r.db.Query("SELECT tags, user_comment FROM images")
	if err != nil {
		return nil, fmt.Errorf("failed to query dedup keys: %w", err)
	}
	defer rows.Close()

	var keys []models.DedupKey
	for rows.Next() {
		var rawTags, comment string
		if err := rows.Scan(&rawTags, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan dedup key: %w", err)
		}

		var tags []string
		if err := json.Unmarshal([]byte(rawTags), &tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags %q: %w", rawTags, err)
		}

		keys = append(keys, models.NewDedupKey(tags, comment))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}

// CountByCommentPrefix counts stored records for a username whose comment
// matches the candidate's on the first n characters.
func (r *ImageRepository) CountByCommentPrefix(username, comment string, n int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM images
		WHERE username = ? AND substr(user_comment, 1, ?) = substr(?, 1, ?)
	`

	var count int
	if err := r.db.QueryRow(query, username, n, comment, n).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count duplicates: %w", err)
	}

	return count, nil
}

// List retrieves stored records newest-first, up to limit. A non-positive
// limit returns everything.
func (r *ImageRepository) List(limit int) ([]*models.ImageRecord, error) {
	query := `
		SELECT id, url, hash, createdAt, postId, username, web_url, tags, user_comment
		FROM images
		ORDER BY createdAt DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*models.ImageRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// CountRecords returns the total number of stored records.
func (r *ImageRepository) CountRecords() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM images").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// CountUsers returns the number of distinct usernames in the store.
func (r *ImageRepository) CountUsers() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(DISTINCT username) FROM images").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanRecord(rows *sql.Rows) (*models.ImageRecord, error) {
	var (
		record    models.ImageRecord
		createdAt sql.NullTime
		rawTags   string
	)

	err := rows.Scan(
		&record.ID,
		&record.URL,
		&record.Hash,
		&createdAt,
		&record.PostID,
		&record.Username,
		&record.WebURL,
		&rawTags,
		&record.UserComment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	if createdAt.Valid {
		t := createdAt.Time.UTC().Truncate(time.Second)
		record.CreatedAt = &t
	}

	if err := json.Unmarshal([]byte(rawTags), &record.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags %q: %w", rawTags, err)
	}

	return &record, nil
}
