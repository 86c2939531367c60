package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/report"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapError(err), errorResponse{Error: err.Error()})
}

func mapError(err error) int {
	switch {
	case errors.Is(err, export.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, report.ErrInvalidPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var contentTypes = map[export.Format]string{
	export.FormatText: "text/plain; charset=utf-8",
	export.FormatCSV:  "text/csv; charset=utf-8",
	export.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	export.FormatPDF:  "application/pdf",
}
