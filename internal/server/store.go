package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/creative-compliance/internal/db"
	"github.com/jonathan/creative-compliance/internal/types"
)

// ReportStore persists compliance reports. *db.DB implements it.
type ReportStore interface {
	SaveReport(ctx context.Context, report *types.ComplianceReport, req *types.ValidationRequest) error
	GetReport(ctx context.Context, id uuid.UUID) (*types.ComplianceReport, error)
	GetReportRequest(ctx context.Context, id uuid.UUID) (*types.ValidationRequest, error)
	ListReports(ctx context.Context, filters db.ReportFilters) ([]db.ReportSummary, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
	Close()
}

var _ ReportStore = (*db.DB)(nil)
