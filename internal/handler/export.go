package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
)

// Export formats accepted by ?format=.
const (
	formatCSV  = "csv"
	formatJSON = "json"
	formatICS  = "ics"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"day_number", "day_title", "time", "activity", "description", "emoji",
}

// ExportSession handles GET /sessions/{id}/export.
// ?format=csv (default) and ?format=json return one row per activity;
// ?format=ics returns an iCalendar file whose first day is ?start=YYYY-MM-DD
// (today when omitted).
func (s *Server) ExportSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid format parameter"))
		return
	}
	f := formatCSV
	if format != nil {
		f = *format
	}

	switch f {
	case formatCSV, formatJSON:
		s.exportRows(w, r, id, f)
	case formatICS:
		s.exportCalendar(w, r, id)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be one of csv, json, ics"))
	}
}

func (s *Server) exportRows(w http.ResponseWriter, r *http.Request, id uuid.UUID, format string) {
	rows, err := s.export.Rows(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if format == formatJSON {
		out := make([]ExportRow, 0, len(rows))
		for _, row := range rows {
			out = append(out, domainRowToExportRow(row))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	body := buildCSV(rows)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", attachment(id, formatCSV))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

func (s *Server) exportCalendar(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var start *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, "start", r.URL.Query(), &start); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("start must be a date (YYYY-MM-DD)"))
		return
	}
	day := s.now().UTC()
	if start != nil {
		day = start.Time
	}

	cal, err := s.export.Calendar(r.Context(), middleware.PrincipalFrom(r.Context()), id, day)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(id, formatICS))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal))
}

// buildCSV encodes domain rows as CSV.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(domainRowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.Itoa(r.DayNumber),
		r.DayTitle,
		r.Time,
		r.Activity,
		r.Description,
		r.Emoji,
	}
}

func domainRowToExportRow(r domain.ExportRow) ExportRow {
	return ExportRow{
		DayNumber:   r.DayNumber,
		DayTitle:    r.DayTitle,
		Time:        r.Time,
		Activity:    r.Activity,
		Description: r.Description,
		Emoji:       r.Emoji,
	}
}

func attachment(id uuid.UUID, ext string) string {
	return fmt.Sprintf(`attachment; filename="itinerary-%s.%s"`, id, ext)
}
