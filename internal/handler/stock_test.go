package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/handler"
	"github.com/dineops/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type mockStockStore struct {
	listStockItemsFn     func(ctx context.Context, restaurantID uuid.UUID) ([]database.StockItem, error)
	listStockMovementsFn func(ctx context.Context, arg database.ListStockMovementsParams) ([]database.StockMovement, error)
}

func (m *mockStockStore) ListStockItems(ctx context.Context, restaurantID uuid.UUID) ([]database.StockItem, error) {
	if m.listStockItemsFn != nil {
		return m.listStockItemsFn(ctx, restaurantID)
	}
	return []database.StockItem{}, nil
}

func (m *mockStockStore) ListStockMovements(ctx context.Context, arg database.ListStockMovementsParams) ([]database.StockMovement, error) {
	if m.listStockMovementsFn != nil {
		return m.listStockMovementsFn(ctx, arg)
	}
	return []database.StockMovement{}, nil
}

func setupStockRouter(store *mockStockStore) *chi.Mux {
	h := handler.NewStockHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}/stock", h.RegisterRoutes)
	return r
}

func TestListStockItemsHandler(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockStockStore{
		listStockItemsFn: func(ctx context.Context, rid uuid.UUID) ([]database.StockItem, error) {
			return []database.StockItem{
				{ID: uuid.New(), RestaurantID: rid, Name: "Paneer", Unit: "kg", Quantity: makeNumeric("4.50")},
			}, nil
		},
	}
	router := setupStockRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/stock/items", nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	items, _ := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items: got %d, want 1", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["quantity"] != "4.50" {
		t.Errorf("quantity: got %v", first["quantity"])
	}
}

func TestListStockMovementsHandler_ItemFilter(t *testing.T) {
	restaurantID := uuid.New()
	stockItemID := uuid.New()
	var captured database.ListStockMovementsParams
	store := &mockStockStore{
		listStockMovementsFn: func(ctx context.Context, arg database.ListStockMovementsParams) ([]database.StockMovement, error) {
			captured = arg
			return []database.StockMovement{{
				ID: uuid.New(), RestaurantID: restaurantID, StockItemID: stockItemID,
				PreviousQuantity: makeNumeric("4.50"), NewQuantity: makeNumeric("3.00"),
				Change: makeNumeric("-1.50"), Cause: "ORDER_DEDUCTION",
			}}, nil
		},
	}
	router := setupStockRouter(store)

	path := "/restaurants/" + restaurantID.String() + "/stock/movements?stock_item_id=" + stockItemID.String() + "&limit=25"
	rr := doAuthRequest(t, router, "GET", path, nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	if !captured.StockItemID.Valid || uuid.UUID(captured.StockItemID.Bytes) != stockItemID {
		t.Errorf("stock item filter not passed: %+v", captured.StockItemID)
	}
	if captured.Limit != 25 {
		t.Errorf("limit: got %d, want 25", captured.Limit)
	}
	resp := decodeBody(t, rr)
	movements, _ := resp["movements"].([]interface{})
	if len(movements) != 1 {
		t.Fatalf("movements: got %d", len(movements))
	}
	first := movements[0].(map[string]interface{})
	if first["change"] != "-1.50" {
		t.Errorf("change: got %v", first["change"])
	}
}

func TestListStockMovementsHandler_BadItemFilter(t *testing.T) {
	restaurantID := uuid.New()
	router := setupStockRouter(&mockStockStore{})

	path := "/restaurants/" + restaurantID.String() + "/stock/movements?stock_item_id=not-a-uuid"
	rr := doAuthRequest(t, router, "GET", path, nil, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestListStockMovementsHandler_DefaultPagination(t *testing.T) {
	restaurantID := uuid.New()
	var captured database.ListStockMovementsParams
	store := &mockStockStore{
		listStockMovementsFn: func(ctx context.Context, arg database.ListStockMovementsParams) ([]database.StockMovement, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupStockRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/stock/movements", nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if captured.Limit != 50 || captured.Offset != 0 {
		t.Errorf("defaults: got limit=%d offset=%d", captured.Limit, captured.Offset)
	}
	if captured.StockItemID.Valid {
		t.Error("no filter requested, StockItemID should be null")
	}
}
