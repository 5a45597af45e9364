package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/christopherklint97/chatrail/internal/flow"
)

// PTORequest is a submitted time-off request as stored.
type PTORequest struct {
	ID        string
	Start     time.Time
	End       time.Time
	Days      int
	Manager   string
	Reason    string
	Status    string
	ICS       string
	CreatedAt time.Time
}

// RecordPTO stores a submitted draft together with its calendar export.
func (db *DB) RecordPTO(ctx context.Context, d *flow.PTODraft) error {
	var ics bytes.Buffer
	if err := d.WriteICS(&ics, time.Now()); err != nil {
		return fmt.Errorf("exporting request %s: %w", d.ID, err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO pto_requests (id, start_date, end_date, days, manager, reason, status, ics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.Start.Format(flow.DateLayout),
		d.End.Format(flow.DateLayout),
		d.Days, d.Manager, d.Reason, d.Status.String(), ics.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting request %s: %w", d.ID, err)
	}
	return nil
}

// ListPTORequests returns stored requests, oldest first.
func (db *DB) ListPTORequests(ctx context.Context) ([]PTORequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, start_date, end_date, days, manager, reason, status, ics, created_at
		 FROM pto_requests
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	var out []PTORequest
	for rows.Next() {
		var r PTORequest
		var startStr, endStr, createdStr string
		if err := rows.Scan(&r.ID, &startStr, &endStr, &r.Days, &r.Manager, &r.Reason, &r.Status, &r.ICS, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}

		if t, err := time.Parse(flow.DateLayout, startStr); err == nil {
			r.Start = t
		}
		if t, err := time.Parse(flow.DateLayout, endStr); err == nil {
			r.End = t
		}
		if t, err := time.Parse(time.RFC3339, createdStr); err == nil {
			r.CreatedAt = t
		}

		out = append(out, r)
	}
	return out, rows.Err()
}
