package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
	"github.com/aeromarket/drone-service/internal/platform/metrics"
	"github.com/aeromarket/drone-service/internal/usecase"
)

const (
	defaultPage  int32 = 1
	defaultLimit int32 = 10
	maxLimit     int32 = 100
)

// Handler exposes the drone marketplace over HTTP/JSON.
type Handler struct {
	catalog   *usecase.CatalogUsecase
	favorites *usecase.FavoriteUsecase
	reviews   *usecase.ReviewUsecase
	lifecycle *usecase.LifecycleUsecase
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewHandler(
	catalog *usecase.CatalogUsecase,
	favorites *usecase.FavoriteUsecase,
	reviews *usecase.ReviewUsecase,
	lifecycle *usecase.LifecycleUsecase,
	mm *metrics.MetricsManager,
	appLogger *logger.Logger,
) *Handler {
	return &Handler{
		catalog:   catalog,
		favorites: favorites,
		reviews:   reviews,
		lifecycle: lifecycle,
		metrics:   mm,
		logger:    appLogger.Named("HTTPHandler"),
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError maps domain errors to HTTP status codes. Unknown errors never
// leak internals to the client.
func (h *Handler) respondError(w http.ResponseWriter, operation string, err error) {
	var status int
	var message string
	var errType string

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
		errType = "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "resource not found"
		errType = "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
		message = err.Error()
		errType = "invalid_transition"
	case errors.Is(err, domain.ErrRepository):
		status = http.StatusInternalServerError
		message = "storage failure"
		errType = "store_failure"
		h.logger.Error("Store failure", zap.String("operation", operation), zap.Error(err))
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		errType = "internal"
		h.logger.Error("Unhandled error", zap.String("operation", operation), zap.Error(err))
	}

	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(operation, errType).Inc()
	}
	h.respondJSON(w, status, errorResponse{Error: message})
}

// parsePage reads page/limit query parameters leniently: missing or
// malformed values fall back to defaults instead of failing the request.
func parsePage(r *http.Request) (int32, int32) {
	page := defaultPage
	limit := defaultLimit
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v >= 1 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v >= 1 {
		limit = int32(v)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// parseFloatQuery returns nil when the parameter is absent or malformed, so
// an unset bound is never coerced to zero.
func parseFloatQuery(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseStatusQuery(r *http.Request) (*domain.DroneStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status := domain.DroneStatus(raw)
	if !status.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	return &status, nil
}

func (h *Handler) HandleCreateDrone(w http.ResponseWriter, r *http.Request) {
	var req createDroneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "CreateDrone", domain.ErrInvalidInput)
		return
	}

	drone, err := h.catalog.CreateDrone(r.Context(), usecase.CreateDroneInput{
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Price:       req.Price,
		IsService:   req.IsService,
	})
	if err != nil {
		h.respondError(w, "CreateDrone", err)
		return
	}

	if h.metrics != nil {
		h.metrics.DronesCreatedTotal.Inc()
	}
	h.respondJSON(w, http.StatusCreated, toDroneResponse(drone))
}

func (h *Handler) HandleGetDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	drone, err := h.catalog.GetDroneByID(r.Context(), id)
	if err != nil {
		h.respondError(w, "GetDrone", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDroneResponse(drone))
}

func (h *Handler) HandleListDrones(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)
	status, err := parseStatusQuery(r)
	if err != nil {
		h.respondError(w, "ListDrones", err)
		return
	}

	filter := domain.DroneFilter{
		Query:     r.URL.Query().Get("q"),
		Category:  r.URL.Query().Get("category"),
		Condition: r.URL.Query().Get("condition"),
		Location:  r.URL.Query().Get("location"),
		PriceMin:  parseFloatQuery(r, "minPrice"),
		PriceMax:  parseFloatQuery(r, "maxPrice"),
		Status:    status,
		Page:      page,
		Limit:     limit,
	}

	drones, total, err := h.catalog.ListDrones(r.Context(), filter)
	if err != nil {
		h.respondError(w, "ListDrones", err)
		return
	}
	h.respondJSON(w, http.StatusOK, pagedResponse{
		Items: toDroneResponses(drones),
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *Handler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	drones, err := h.catalog.ListByCategory(r.Context(), category)
	if err != nil {
		h.respondError(w, "ListByCategory", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDroneResponses(drones))
}

func (h *Handler) HandleListByPriceRange(w http.ResponseWriter, r *http.Request) {
	min := parseFloatQuery(r, "min")
	max := parseFloatQuery(r, "max")
	if min == nil || max == nil {
		h.respondError(w, "ListByPriceRange", domain.ErrInvalidInput)
		return
	}

	drones, err := h.catalog.ListByPriceRange(r.Context(), *min, *max)
	if err != nil {
		h.respondError(w, "ListByPriceRange", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDroneResponses(drones))
}

func (h *Handler) HandleUpdateDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateDroneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "UpdateDrone", domain.ErrInvalidInput)
		return
	}

	drone, err := h.catalog.UpdateDrone(r.Context(), id, domain.DronePatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Price:       req.Price,
	})
	if err != nil {
		h.respondError(w, "UpdateDrone", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDroneResponse(drone))
}

func (h *Handler) HandleDeleteDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.DeleteDrone(r.Context(), id); err != nil {
		h.respondError(w, "DeleteDrone", err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) HandleAddReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "AddReview", domain.ErrInvalidInput)
		return
	}

	drone, err := h.reviews.AddReview(r.Context(), id, req.UserID, req.Rating, req.Comment)
	if err != nil {
		h.respondError(w, "AddReview", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ReviewsAddedTotal.Inc()
	}
	h.respondJSON(w, http.StatusCreated, toDroneResponse(drone))
}

func (h *Handler) HandlePurchaseDrone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	drone, transitioned, err := h.lifecycle.MarkSold(r.Context(), id)
	if err != nil {
		h.respondError(w, "PurchaseDrone", err)
		return
	}

	// idempotent re-purchase of a sold listing is not a sale
	if h.metrics != nil && transitioned {
		h.metrics.DronesSoldTotal.Inc()
	}
	h.respondJSON(w, http.StatusOK, toDroneResponse(drone))
}

func (h *Handler) HandleGetDroneOwner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	owner, err := h.lifecycle.GetOwnerByDroneID(r.Context(), id)
	if err != nil {
		h.respondError(w, "GetDroneOwner", err)
		return
	}
	h.respondJSON(w, http.StatusOK, ownerResponse{
		ID:       owner.ID,
		UserName: owner.UserName,
		Email:    owner.Email,
		Role:     string(owner.Role),
	})
}

func (h *Handler) HandleListUserDrones(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	status, err := parseStatusQuery(r)
	if err != nil {
		h.respondError(w, "ListUserDrones", err)
		return
	}

	drones, err := h.lifecycle.ListMine(r.Context(), userID, status)
	if err != nil {
		h.respondError(w, "ListUserDrones", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDroneResponses(drones))
}

func (h *Handler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	droneID := chi.URLParam(r, "droneId")

	favorites, err := h.favorites.AddFavorite(r.Context(), userID, droneID)
	if err != nil {
		h.respondError(w, "AddFavorite", err)
		return
	}

	if h.metrics != nil {
		h.metrics.FavoriteOpsTotal.WithLabelValues("add").Inc()
	}
	h.respondJSON(w, http.StatusOK, favoritesMutationResponse{UserID: userID, Favorites: favorites})
}

func (h *Handler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	droneID := chi.URLParam(r, "droneId")

	favorites, err := h.favorites.RemoveFavorite(r.Context(), userID, droneID)
	if err != nil {
		h.respondError(w, "RemoveFavorite", err)
		return
	}

	if h.metrics != nil {
		h.metrics.FavoriteOpsTotal.WithLabelValues("remove").Inc()
	}
	h.respondJSON(w, http.StatusOK, favoritesMutationResponse{UserID: userID, Favorites: favorites})
}

func (h *Handler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	page, limit := parsePage(r)

	drones, total, err := h.favorites.ListFavorites(r.Context(), userID, page, limit)
	if err != nil {
		h.respondError(w, "ListFavorites", err)
		return
	}
	h.respondJSON(w, http.StatusOK, pagedResponse{
		Items: toDroneResponses(drones),
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
