package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report kinds.
const (
	ReportKindDaily  = "daily"
	ReportKindWeekly = "weekly"
)

// InsertReport records a composed report before sending and returns its id.
// meta holds run statistics for later inspection; nil stores an empty object.
func (db *DB) InsertReport(ctx context.Context, kind, subject, bodyHTML string, meta map[string]any) (string, error) {
	id := uuid.NewString()

	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal report meta: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO reports (id, kind, subject, body_html, meta) VALUES ($1, $2, $3, $4, $5)`,
		id, kind, subject, bodyHTML, metaJSON)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}

	return id, nil
}

// MarkReportSent stamps the delivery time after a successful send.
func (db *DB) MarkReportSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `UPDATE reports SET sent_at = $2 WHERE id = $1`, id, sentAt)
	if err != nil {
		return fmt.Errorf("mark report sent: %w", err)
	}

	return nil
}
