package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/sla-dashboard/internal/repository/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("upload not found")

const schema = `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		uploaded_at TEXT NOT NULL,
		columns TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS upload_rows (
		upload_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		cells TEXT NOT NULL,
		PRIMARY KEY (upload_id, position),
		FOREIGN KEY (upload_id) REFERENCES uploads(id) ON DELETE CASCADE
	);
`

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Migrate creates the session tables when they do not exist yet.
func (s *UploadRepository) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate upload tables: %w", err)
	}
	return nil
}

// ReplaceUpload swaps the session's workbook for u. Previous rows are removed
// in the same transaction so a reader never sees two uploads mixed.
func (s *UploadRepository) ReplaceUpload(ctx context.Context, u *models.Upload) (err error) {
	columns, err := json.Marshal(u.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ReplaceUpload: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM upload_rows`); err != nil {
		return fmt.Errorf("clear upload rows: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM uploads`); err != nil {
		return fmt.Errorf("clear uploads: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, uploaded_at, columns) VALUES (?, ?, ?, ?)`,
		u.ID.String(), u.Filename, u.UploadedAt.UTC().Format(time.RFC3339Nano), string(columns),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO upload_rows (upload_id, position, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare upload rows: %w", err)
	}
	defer stmt.Close()

	for i, row := range u.Rows {
		cells, mErr := json.Marshal(row)
		if mErr != nil {
			err = fmt.Errorf("encode row %d: %w", i, mErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, u.ID.String(), i, string(cells)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ReplaceUpload: %w", err)
	}
	return nil
}

// LatestUpload returns the session's workbook or ErrNotFound.
func (s *UploadRepository) LatestUpload(ctx context.Context) (*models.Upload, error) {
	const query = `
		SELECT id, filename, uploaded_at, columns
		FROM uploads
		ORDER BY uploaded_at DESC
		LIMIT 1
	`

	var id, uploadedAt, columns string
	u := &models.Upload{}
	err := s.db.QueryRowContext(ctx, query).Scan(&id, &u.Filename, &uploadedAt, &columns)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query LatestUpload: %w", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode upload id: %w", err)
	}
	if u.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
		return nil, fmt.Errorf("decode upload time: %w", err)
	}
	if err = json.Unmarshal([]byte(columns), &u.Columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM upload_rows WHERE upload_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query upload rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, fmt.Errorf("decode upload row: %w", err)
		}
		u.Rows = append(u.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload rows: %w", err)
	}
	return u, nil
}
