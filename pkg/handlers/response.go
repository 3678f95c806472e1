package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const malformedReport = "report data was malformed"

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, api.ErrorResponse{Error: msg})
}

// WriteError maps domain errors onto a status code and a message safe to show
// the user. Anything unrecognised is a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)

	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	WriteMessage(w, r, status, msg)
}

func StatusFor(err error) (int, string) {
	var (
		dateErr   *domain.InvalidDateError
		rangeErr  *domain.InvalidRangeError
		pageErr   *domain.PageOutOfRangeError
		fetchErr  *domain.ReportFetchError
		schemaErr *domain.SchemaMismatchError
		parseErr  *domain.NumericParseError
	)

	switch {
	case errors.As(err, &dateErr):
		return http.StatusBadRequest, dateErr.Error()
	case errors.As(err, &rangeErr):
		return http.StatusBadRequest, rangeErr.Error()
	case errors.As(err, &pageErr):
		return http.StatusBadRequest, pageErr.Error()
	case errors.Is(err, domain.ErrInvalidPageSize):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, fmt.Sprintf("could not load %s data", fetchErr.Label)
	case errors.As(err, &schemaErr), errors.As(err, &parseErr):
		return http.StatusBadGateway, malformedReport
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
