package http

import (
	"net/http"

	"tracker/internal/export"
	applog "tracker/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		errorResponse(err).Write(w)
		return
	}
	NewResponse().JSON(s.tracker.Dashboard(filter)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.tracker.Catalog().All()).Write(w)
}

// handleExportCSV downloads the table as currently filtered.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		errorResponse(err).Write(w)
		return
	}

	body := s.tracker.Export(filter)
	applog.FromContext(ctx).InfoContext(ctx, "Transactions exported",
		applog.FieldOperation, applog.OpExport,
		"filter", filter.Key(),
		"bytes", len(body))

	NewResponse().
		Attachment(export.FileName, export.ContentType, []byte(body)).
		Write(w)
}
