package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TableServicer defines the service methods needed by table handlers.
// Satisfied by *service.TableService; narrow interface for testability.
type TableServicer interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]database.DiningTable, error)
	Assign(ctx context.Context, restaurantID, tableID, orderID uuid.UUID) (*database.DiningTable, error)
	Free(ctx context.Context, restaurantID, tableID uuid.UUID) (*database.DiningTable, error)
}

// TableHandler handles dining table endpoints.
type TableHandler struct {
	svc TableServicer
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(svc TableServicer) *TableHandler {
	return &TableHandler{svc: svc}
}

// RegisterRoutes registers table endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter: /restaurants/{rid}/tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{id}/assign", h.Assign)
	r.Post("/{id}/free", h.Free)
}

// --- Request / Response types ---

type assignTableRequest struct {
	OrderID string `json:"order_id"`
}

type tableResponse struct {
	ID             uuid.UUID `json:"id"`
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	Label          string    `json:"label"`
	Capacity       int32     `json:"capacity"`
	Status         string    `json:"status"`
	CurrentOrderID *string   `json:"current_order_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type tableListResponse struct {
	Tables []tableResponse `json:"tables"`
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	tables, err := h.svc.List(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = dbTableToResponse(t)
	}
	writeJSON(w, http.StatusOK, tableListResponse{Tables: resp})
}

// Assign handles POST /restaurants/{rid}/tables/{id}/assign.
// Seats an existing order at the table.
func (h *TableHandler) Assign(w http.ResponseWriter, r *http.Request) {
	restaurantID, tableID, ok := h.parseTablePath(w, r)
	if !ok {
		return
	}

	var req assignTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id is required"})
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
		return
	}

	table, err := h.svc.Assign(r.Context(), restaurantID, tableID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrTableNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		case errors.Is(err, service.ErrTableOccupied), errors.Is(err, service.ErrOrderTerminal):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: assign table: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dbTableToResponse(*table))
}

// Free handles POST /restaurants/{rid}/tables/{id}/free.
// Floor-staff override; freeing an available table is a no-op success.
func (h *TableHandler) Free(w http.ResponseWriter, r *http.Request) {
	restaurantID, tableID, ok := h.parseTablePath(w, r)
	if !ok {
		return
	}

	table, err := h.svc.Free(r.Context(), restaurantID, tableID)
	if err != nil {
		if errors.Is(err, service.ErrTableNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: free table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbTableToResponse(*table))
}

// --- Helpers ---

func (h *TableHandler) parseTablePath(w http.ResponseWriter, r *http.Request) (restaurantID, tableID uuid.UUID, ok bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return uuid.Nil, uuid.Nil, false
	}
	tableID, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, tableID, true
}

func dbTableToResponse(t database.DiningTable) tableResponse {
	resp := tableResponse{
		ID:           t.ID,
		RestaurantID: t.RestaurantID,
		Label:        t.Label,
		Capacity:     t.Capacity,
		Status:       string(t.Status),
		UpdatedAt:    t.UpdatedAt,
	}
	if t.CurrentOrderID.Valid {
		s := uuid.UUID(t.CurrentOrderID.Bytes).String()
		resp.CurrentOrderID = &s
	}
	return resp
}
