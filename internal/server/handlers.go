package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/querysync"
	"github.com/matzehuels/pkgtrack/pkg/series"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

type handlers struct {
	store    *tracker.Store
	location querysync.Location
}

type addRequest struct {
	Name string `json:"name" validate:"required,max=214"`
}

type replaceRequest struct {
	Packages []string `json:"packages" validate:"max=100,dive,max=214"`
}

// PackagesResponse is the body of GET /api/packages.
type PackagesResponse struct {
	Packages  []tracker.Summary `json:"packages"`
	Loading   bool              `json:"loading"`
	HasErrors bool              `json:"has_errors"`
}

// ChartSeries describes one line of the chart.
type ChartSeries struct {
	Package  string           `json:"package"`
	Color    string           `json:"color"`
	Releases []series.Release `json:"releases"`
}

// ChartResponse is the body of GET /api/chart.
type ChartResponse struct {
	Rows   []series.ChartRow `json:"rows"`
	Series []ChartSeries     `json:"series"`
}

// QueryResponse is the body of GET /api/query.
type QueryResponse struct {
	Query string `json:"query"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]string{"status": "ok"})
}

func (h *handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, packagesResponse(h.store.State()))
}

func (h *handlers) addPackage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[addRequest](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	name := integrations.NormalizePkgName(req.Name)
	if err := errors.ValidatePackageName(name); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.store.Add(r.Context(), name); err != nil {
		respondError(w, r, err)
		return
	}
	h.respondSummary(w, r, http.StatusCreated, name)
}

func (h *handlers) replacePackages(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[replaceRequest](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	for _, raw := range req.Packages {
		name := integrations.NormalizePkgName(raw)
		if name == "" {
			continue
		}
		if err := errors.ValidatePackageName(name); err != nil {
			respondError(w, r, err)
			return
		}
	}

	if err := h.store.InitializeFromQuery(r.Context(), req.Packages); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, packagesResponse(h.store.State()))
}

func (h *handlers) removePackage(w http.ResponseWriter, r *http.Request) {
	name, ok := h.trackedParam(w, r)
	if !ok {
		return
	}
	h.store.Remove(name)
	respondNoContent(w, r)
}

func (h *handlers) refreshPackage(w http.ResponseWriter, r *http.Request) {
	name, ok := h.trackedParam(w, r)
	if !ok {
		return
	}

	fresh := false
	if v := r.URL.Query().Get("fresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, r, errors.New(errors.ErrCodeInvalidArgument, "fresh must be a boolean"))
			return
		}
		fresh = b
	}

	refresh := h.store.Refresh
	if fresh {
		refresh = h.store.RefreshFresh
	}
	if err := refresh(r.Context(), name); err != nil {
		respondError(w, r, err)
		return
	}
	h.respondSummary(w, r, http.StatusOK, name)
}

func (h *handlers) clearError(w http.ResponseWriter, r *http.Request) {
	name, ok := h.trackedParam(w, r)
	if !ok {
		return
	}
	h.store.ClearError(name)
	respondNoContent(w, r)
}

func (h *handlers) chart(w http.ResponseWriter, r *http.Request) {
	datasets := tracker.OrderedSeries(h.store.State())

	resp := ChartResponse{
		Rows:   series.BuildChartData(datasets),
		Series: make([]ChartSeries, 0, len(datasets)),
	}
	for i, ds := range datasets {
		releases := ds.Releases
		if releases == nil {
			releases = []series.Release{}
		}
		resp.Series = append(resp.Series, ChartSeries{
			Package:  ds.PackageName,
			Color:    series.Color(i),
			Releases: releases,
		})
	}
	respondOK(w, r, resp)
}

func (h *handlers) query(w http.ResponseWriter, r *http.Request) {
	if h.location == nil {
		h.notFound(w, r)
		return
	}
	respondOK(w, r, QueryResponse{Query: h.location.Query()})
}

func (h *handlers) notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, errors.New(errors.ErrCodeNotFound, "route %s not found", r.URL.Path))
}

func (h *handlers) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Envelope{
		StatusCode: http.StatusMethodNotAllowed,
		Status:     http.StatusText(http.StatusMethodNotAllowed),
		Code:       errors.ErrCodeInvalidArgument,
		Error:      "method " + r.Method + " not allowed",
		RequestID:  RequestID(r.Context()),
	})
}

// trackedParam reads {name}, normalizes it and writes a 404 when the
// package is not tracked.
func (h *handlers) trackedParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, r, errors.Wrap(errors.ErrCodeInvalidArgument, err, "malformed package name"))
		return "", false
	}
	name := integrations.NormalizePkgName(raw)
	if name == "" {
		respondError(w, r, errors.New(errors.ErrCodeInvalidArgument, "Package name is required"))
		return "", false
	}
	if !h.store.State().Tracked(name) {
		respondError(w, r, errors.New(errors.ErrCodeNotFound, "package %s is not tracked", name).WithPackage(name))
		return "", false
	}
	return name, true
}

func (h *handlers) respondSummary(w http.ResponseWriter, r *http.Request, status int, name string) {
	summary, ok := tracker.SummaryOf(h.store.State(), name)
	if !ok {
		// removed while the fetch was running
		respondError(w, r, errors.New(errors.ErrCodeNotFound, "package %s is not tracked", name).WithPackage(name))
		return
	}
	respond(w, r, status, summary)
}

func packagesResponse(st tracker.State) PackagesResponse {
	return PackagesResponse{
		Packages:  tracker.Summaries(st),
		Loading:   tracker.IsAnyLoading(st),
		HasErrors: tracker.HasErrors(st),
	}
}
