package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"salespulse/internal/dataset"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/services"
)

const dateLayout = "2006-01-02"

// DataService is the service surface the data handler depends on.
type DataService interface {
	Overview(ctx context.Context, rng dataset.DateRange) (*services.OverviewView, error)
	Stores(ctx context.Context, rng dataset.DateRange) ([]int64, error)
	StoreStats(ctx context.Context, rng dataset.DateRange, store int64) (*services.StoreView, error)
	States(ctx context.Context, rng dataset.DateRange) ([]string, error)
	StateStats(ctx context.Context, rng dataset.DateRange, state string) (*services.StateView, error)
	Insights(ctx context.Context, rng dataset.DateRange) (*services.InsightsView, error)
}

// DataHandler serves the dashboard views as JSON.
type DataHandler struct {
	service      DataService
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
}

// NewDataHandler creates a data handler.
func NewDataHandler(service DataService, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		errorHandler: errorHandler,
		validator:    validator.New(),
	}
}

// Routes returns the chi router for the data endpoints.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/overview", h.GetOverview)
	r.Get("/insights", h.GetInsights)
	r.Get("/stores", h.GetStores)
	r.Get("/stores/{store}", h.GetStoreStats)
	r.Get("/states", h.GetStates)
	r.Get("/states/{state}", h.GetStateStats)

	return r
}

// rangeQuery carries the optional from/to query parameters.
type rangeQuery struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

// GetOverview handles GET /api/data/overview.
func (h *DataHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Overview(r.Context(), rng)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respondJSON(w, r, view)
}

// GetInsights handles GET /api/data/insights.
func (h *DataHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Insights(r.Context(), rng)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respondJSON(w, r, view)
}

// GetStores handles GET /api/data/stores.
func (h *DataHandler) GetStores(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stores, err := h.service.Stores(r.Context(), rng)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respondJSON(w, r, map[string]interface{}{
		"stores": stores,
		"count":  len(stores),
	})
}

// GetStoreStats handles GET /api/data/stores/{store}.
func (h *DataHandler) GetStoreStats(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	storeParam := chi.URLParam(r, "store")
	store, convErr := strconv.ParseInt(storeParam, 10, 64)
	if convErr != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("store", "must be an integer store number"))
		return
	}

	view, err := h.service.StoreStats(r.Context(), rng, store)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	h.respondJSON(w, r, view)
}

// GetStates handles GET /api/data/states.
func (h *DataHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	states, err := h.service.States(r.Context(), rng)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respondJSON(w, r, map[string]interface{}{
		"states": states,
		"count":  len(states),
	})
}

// GetStateStats handles GET /api/data/states/{state}.
func (h *DataHandler) GetStateStats(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	state := chi.URLParam(r, "state")
	if state == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("state", "must not be empty"))
		return
	}

	view, err := h.service.StateStats(r.Context(), rng, state)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	h.respondJSON(w, r, view)
}

// parseRange validates from/to query parameters and builds a DateRange.
// Both bounds are optional; an open bound leaves the zero time, which the
// filter treats as unbounded on that side.
func (h *DataHandler) parseRange(r *http.Request) (dataset.DateRange, error) {
	q := rangeQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	if err := h.validator.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := "from"
			if verrs[0].Field() == "To" {
				field = "to"
			}
			return dataset.DateRange{}, apierrors.ErrValidation(field, "must be a date in YYYY-MM-DD format")
		}
		return dataset.DateRange{}, apierrors.InvalidRequestWithError(err)
	}

	var rng dataset.DateRange
	if q.From != "" {
		from, _ := time.Parse(dateLayout, q.From)
		rng.From = from
	}
	if q.To != "" {
		to, _ := time.Parse(dateLayout, q.To)
		rng.To = to
	}

	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return dataset.DateRange{}, apierrors.ErrValidation("to", "must not be before from")
	}

	return rng, nil
}

// mapServiceError converts service sentinels into API errors; everything
// else passes through for the central handler to classify.
func (h *DataHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrStoreNotFound):
		return apierrors.ErrStoreNotFound
	case errors.Is(err, services.ErrStateNotFound):
		return apierrors.ErrStateNotFound
	default:
		return err
	}
}

// respondJSON writes the standard success envelope.
func (h *DataHandler) respondJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}
