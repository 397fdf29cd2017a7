package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/creative-compliance/internal/types"
)

// DefaultListLimit is used when a listing does not set a limit
const DefaultListLimit = 50

// ReportSummary is a report row without the stored documents
type ReportSummary struct {
	ID         uuid.UUID `json:"id"`
	Compliant  bool      `json:"compliant"`
	Score      int       `json:"score"`
	FormatType string    `json:"format_type"`
	Hard       int       `json:"hard"`
	Warnings   int       `json:"warnings"`
	Info       int       `json:"info"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReportFilters narrows a report listing
type ReportFilters struct {
	Compliant  *bool
	FormatType string
	Limit      int
}

// SaveReport stores a report and, optionally, the request that produced it.
// The report ID must be a UUID.
func (db *DB) SaveReport(ctx context.Context, report *types.ComplianceReport, req *types.ValidationRequest) error {
	id, err := uuid.Parse(report.ID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", report.ID, err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	var requestJSON []byte
	if req != nil {
		if requestJSON, err = json.Marshal(req); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO compliance_reports (id, compliant, score, format_type, hard, warnings, info, report, request, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, report.Compliant, report.Score, report.FormatType,
		report.Summary.Hard, report.Summary.Warnings, report.Summary.Info,
		reportJSON, requestJSON, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", id, err)
	}
	return nil
}

// GetReport retrieves a stored report. Returns nil, nil when it does not exist.
func (db *DB) GetReport(ctx context.Context, id uuid.UUID) (*types.ComplianceReport, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT report FROM compliance_reports WHERE id = $1`,
		id,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report types.ComplianceReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// GetReportRequest retrieves the design a report was produced from.
// Returns nil, nil when the report does not exist or was stored without it.
func (db *DB) GetReportRequest(ctx context.Context, id uuid.UUID) (*types.ValidationRequest, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT request FROM compliance_reports WHERE id = $1`,
		id,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report request: %w", err)
	}
	if content == nil {
		return nil, nil
	}

	var req types.ValidationRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report request: %w", err)
	}
	return &req, nil
}

// ListReports retrieves recent reports with optional filters, newest first
func (db *DB) ListReports(ctx context.Context, filters ReportFilters) ([]ReportSummary, error) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query, args := buildListQuery(filters)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]ReportSummary, 0)
	for rows.Next() {
		var r ReportSummary
		if err := rows.Scan(&r.ID, &r.Compliant, &r.Score, &r.FormatType, &r.Hard, &r.Warnings, &r.Info, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func buildListQuery(filters ReportFilters) (string, []any) {
	query := `SELECT id, compliant, score, format_type, hard, warnings, info, created_at
		FROM compliance_reports WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Compliant != nil {
		query += fmt.Sprintf(" AND compliant = $%d", argNum)
		args = append(args, *filters.Compliant)
		argNum++
	}
	if filters.FormatType != "" {
		query += fmt.Sprintf(" AND format_type = $%d", argNum)
		args = append(args, filters.FormatType)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

// DeleteReport removes a stored report. Deleting a missing report is not an error.
func (db *DB) DeleteReport(ctx context.Context, id uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM compliance_reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}
