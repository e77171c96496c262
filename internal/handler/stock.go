package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dineops/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// StockStore defines the database methods needed by stock handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StockStore interface {
	ListStockItems(ctx context.Context, restaurantID uuid.UUID) ([]database.StockItem, error)
	ListStockMovements(ctx context.Context, arg database.ListStockMovementsParams) ([]database.StockMovement, error)
}

// StockHandler exposes the read-only stock views: current balances and the
// append-only movement ledger.
type StockHandler struct {
	store StockStore
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(store StockStore) *StockHandler {
	return &StockHandler{store: store}
}

// RegisterRoutes registers stock endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter: /restaurants/{rid}/stock
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.ListItems)
	r.Get("/movements", h.ListMovements)
}

// --- Response types ---

type stockItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Quantity  string    `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type stockMovementResponse struct {
	ID               uuid.UUID `json:"id"`
	StockItemID      uuid.UUID `json:"stock_item_id"`
	OrderID          *string   `json:"order_id"`
	PreviousQuantity string    `json:"previous_quantity"`
	NewQuantity      string    `json:"new_quantity"`
	Change           string    `json:"change"`
	Cause            string    `json:"cause"`
	CreatedAt        time.Time `json:"created_at"`
}

type stockMovementListResponse struct {
	Movements []stockMovementResponse `json:"movements"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}

// --- Handlers ---

// ListItems handles GET /restaurants/{rid}/stock/items.
func (h *StockHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	items, err := h.store.ListStockItems(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list stock items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stockItemResponse, len(items))
	for i, item := range items {
		resp[i] = stockItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  numericToString(item.Quantity),
			UpdatedAt: item.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": resp})
}

// ListMovements handles GET /restaurants/{rid}/stock/movements.
// Optional stock_item_id filter plus limit/offset pagination.
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListStockMovementsParams{
		RestaurantID: restaurantID,
		Limit:        int32(limit),
		Offset:       int32(offset),
	}
	if s := r.URL.Query().Get("stock_item_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock_item_id"})
			return
		}
		params.StockItemID = pgtype.UUID{Bytes: id, Valid: true}
	}

	movements, err := h.store.ListStockMovements(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list stock movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stockMovementResponse, len(movements))
	for i, m := range movements {
		resp[i] = stockMovementResponse{
			ID:               m.ID,
			StockItemID:      m.StockItemID,
			PreviousQuantity: numericToString(m.PreviousQuantity),
			NewQuantity:      numericToString(m.NewQuantity),
			Change:           numericToString(m.Change),
			Cause:            m.Cause,
			CreatedAt:        m.CreatedAt,
		}
		if m.OrderID.Valid {
			s := uuid.UUID(m.OrderID.Bytes).String()
			resp[i].OrderID = &s
		}
	}
	writeJSON(w, http.StatusOK, stockMovementListResponse{
		Movements: resp,
		Limit:     limit,
		Offset:    offset,
	})
}
