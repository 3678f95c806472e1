package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/adapters"
	"github.com/de-tools/traffic-atlas/pkg/handlers"
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/dashboard"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var errNoSession = errors.New("request has no session")

type Handler struct {
	pages     map[string]dashboard.Builder
	paginator *report.Paginator
	now       func() time.Time
}

func NewHandler(paginator *report.Paginator, pages ...dashboard.Builder) *Handler {
	h := &Handler{
		pages:     make(map[string]dashboard.Builder, len(pages)),
		paginator: paginator,
		now:       time.Now,
	}
	for _, p := range pages {
		h.pages[p.Name()] = p
	}
	return h
}

// GetReport serves one dashboard page for the periods in the query string.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	sess, rep, ok := h.build(w, r)
	if !ok {
		return
	}

	response, err := adapters.MapReportDomainToApi(rep, h.paginator, sess.Pages())
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	logger.Debug().
		Str("page", rep.Title).
		Str("current", rep.CurrentLabel).
		Str("comparison", rep.ComparisonLabel).
		Msg("report served")
	handlers.WriteJSON(w, r, http.StatusOK, response)
}

// SetPageState moves one table of the caller's session to a new page and
// page size, leaving every other table where it was.
func (h *Handler) SetPageState(w http.ResponseWriter, r *http.Request) {
	var req api.PageStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	tableName, err := url.PathUnescape(chi.URLParam(r, "table"))
	if err != nil {
		handlers.WriteMessage(w, r, http.StatusBadRequest, "invalid table name")
		return
	}

	sess, rep, ok := h.build(w, r)
	if !ok {
		return
	}

	table, found := rep.Table(tableName)
	if !found {
		handlers.WriteMessage(w, r, http.StatusNotFound, fmt.Sprintf("table %q not found", tableName))
		return
	}

	page, err := h.paginator.Paginate(table, req.PageSize, req.Page)
	if err != nil {
		handlers.WriteError(w, r, err)
		return
	}
	state := domain.PageState{PageSize: req.PageSize, CurrentPage: req.Page}
	if err := sess.Pages().Set(table.Name, state); err != nil {
		handlers.WriteError(w, r, err)
		return
	}

	handlers.WriteJSON(w, r, http.StatusOK, adapters.MapPageDomainToApi(table, page))
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (*session.Session, *domain.Report, bool) {
	ctx := r.Context()

	sess, ok := session.FromContext(ctx)
	if !ok {
		handlers.WriteError(w, r, errNoSession)
		return nil, nil, false
	}

	name := chi.URLParam(r, "page")
	builder, ok := h.pages[name]
	if !ok {
		handlers.WriteMessage(w, r, http.StatusNotFound, fmt.Sprintf("page %q not found", name))
		return nil, nil, false
	}

	q := r.URL.Query()
	periods, err := dashboard.ParsePeriods(dashboard.PeriodParams{
		CurrentFrom: q.Get("current_from"),
		CurrentTo:   q.Get("current_to"),
		CompareFrom: q.Get("compare_from"),
		CompareTo:   q.Get("compare_to"),
	}, h.now())
	if err != nil {
		handlers.WriteError(w, r, err)
		return nil, nil, false
	}

	rep, err := builder.Build(ctx, periods)
	if err != nil {
		handlers.WriteError(w, r, err)
		return nil, nil, false
	}
	return sess, rep, true
}
