package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/creative-compliance/internal/autofix"
	"github.com/jonathan/creative-compliance/internal/db"
	"github.com/jonathan/creative-compliance/internal/htmlimport"
	"github.com/jonathan/creative-compliance/internal/types"
)

// AutofixRequest is the body of POST /autofix
type AutofixRequest struct {
	Pages      []types.Page      `json:"pages"`
	Violations []types.Violation `json:"violations"`
}

// AutofixResponse is the result of POST /autofix
type AutofixResponse struct {
	Pages   []types.Page `json:"pages"`
	Applied int          `json:"applied"`
}

// FixResponse is the result of POST /fix
type FixResponse struct {
	Design     *types.ValidationRequest `json:"design"`
	Report     *types.ComplianceReport  `json:"report"`
	Applied    int                      `json:"applied"`
	Iterations int                      `json:"iterations"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	storeStatus := "disabled"
	if s.store != nil {
		storeStatus = "enabled"
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "store": storeStatus})
}

// handleValidate validates a design posted as JSON
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.engine.ValidateJSON(r.Context(), body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.ValidationRequest
	if err := json.Unmarshal(body, &req); err == nil {
		s.saveReport(r.Context(), report, &req)
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleValidateHTML validates a canvas HTML export.
// Query: format, alcohol, faces.
func (s *Server) handleValidateHTML(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := htmlimport.Parse(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.Options = opts

	report, err := s.engine.Validate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.saveReport(r.Context(), report, req)
	s.jsonResponse(w, http.StatusOK, report)
}

// handleAutofix applies the auto-fixes of the posted violations to the posted pages
func (s *Server) handleAutofix(w http.ResponseWriter, r *http.Request) {
	var body AutofixRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	pages, applied, err := autofix.ApplyAll(body.Pages, body.Violations)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if pages == nil {
		pages = []types.Page{}
	}
	s.jsonResponse(w, http.StatusOK, AutofixResponse{Pages: pages, Applied: applied})
}

// handleFix validates a design, applies every auto-fix and re-validates
func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	var req types.ValidationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	maxIterations := autofix.DefaultMaxIterations
	if v := r.URL.Query().Get("max_iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, &ErrValidation{Field: "max_iterations", Message: "must be a positive integer"})
			return
		}
		maxIterations = n
	}

	result, err := autofix.RunFixLoop(r.Context(), s.engine, &req, maxIterations)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.saveReport(r.Context(), result.Report, result.Request)
	s.jsonResponse(w, http.StatusOK, FixResponse{
		Design:     result.Request,
		Report:     result.Report,
		Applied:    result.Applied,
		Iterations: result.Iterations,
	})
}

// handleListReports lists stored reports, newest first.
// Query: limit, compliant, format.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, &ErrStoreUnavailable{})
		return
	}

	filters := db.ReportFilters{FormatType: r.URL.Query().Get("format")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > 500 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be between 1 and 500"})
			return
		}
		filters.Limit = limit
	}
	if v := r.URL.Query().Get("compliant"); v != "" {
		compliant, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "compliant", Message: "must be true or false"})
			return
		}
		filters.Compliant = &compliant
	}

	reports, err := s.store.ListReports(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

// handleGetReport returns a stored report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	report, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if report == nil {
		s.writeError(w, &ErrNotFound{Resource: "report", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleGetReportDesign returns the design a stored report was produced from
func (s *Server) handleGetReportDesign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	req, err := s.store.GetReportRequest(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req == nil {
		s.writeError(w, &ErrNotFound{Resource: "report design", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, req)
}

// handleDeleteReport removes a stored report
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteReport(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reportID parses the {id} path value, writing the error response when the request cannot proceed
func (s *Server) reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.writeError(w, &ErrStoreUnavailable{})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// saveReport stores a report when a store is configured. Storage failures do not fail the request.
func (s *Server) saveReport(ctx context.Context, report *types.ComplianceReport, req *types.ValidationRequest) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveReport(ctx, report, req); err != nil {
		s.logger.Warn("failed to store report", "report_id", report.ID, "error", err)
	}
}

func optionsFromQuery(r *http.Request) (types.Options, error) {
	q := r.URL.Query()
	opts := types.Options{FormatType: q.Get("format")}

	for name, dst := range map[string]*bool{"alcohol": &opts.IsAlcohol, "faces": &opts.EnableFaceDetection} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: name, Message: "must be true or false"}
		}
		*dst = b
	}
	return opts, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
