package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dineops/api/internal/auth"
	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/handler"
	"github.com/dineops/api/internal/middleware"
	"github.com/dineops/api/internal/service"
	"github.com/dineops/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn     func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	editFn       func(ctx context.Context, req service.EditOrderRequest) (*service.OrderResult, error)
	transitionFn func(ctx context.Context, restaurantID, orderID uuid.UUID, target database.OrderStatus) (*database.Order, error)
	cancelFn     func(ctx context.Context, restaurantID, orderID, cancelledBy uuid.UUID, reason string) (*database.Order, error)
	softDeleteFn func(ctx context.Context, restaurantID, orderID uuid.UUID, reason string) error
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
	return m.createFn(ctx, req)
}

func (m *mockOrderService) EditOrder(ctx context.Context, req service.EditOrderRequest) (*service.OrderResult, error) {
	return m.editFn(ctx, req)
}

func (m *mockOrderService) TransitionStatus(ctx context.Context, restaurantID, orderID uuid.UUID, target database.OrderStatus) (*database.Order, error) {
	return m.transitionFn(ctx, restaurantID, orderID, target)
}

func (m *mockOrderService) Cancel(ctx context.Context, restaurantID, orderID, cancelledBy uuid.UUID, reason string) (*database.Order, error) {
	return m.cancelFn(ctx, restaurantID, orderID, cancelledBy, reason)
}

func (m *mockOrderService) SoftDelete(ctx context.Context, restaurantID, orderID uuid.UUID, reason string) error {
	return m.softDeleteFn(ctx, restaurantID, orderID, reason)
}

// --- Mock OrderStore ---

type mockOrderStore struct {
	getOrderFn                func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	listOrdersFn              func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listOrderItemsByOrderFn   func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	listTicketsByOrderFn      func(ctx context.Context, orderID uuid.UUID) ([]database.KitchenTicket, error)
	listTicketItemsByTicketFn func(ctx context.Context, ticketID uuid.UUID) ([]database.KitchenTicketItem, error)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsByOrderFn != nil {
		return m.listOrderItemsByOrderFn(ctx, orderID)
	}
	return []database.OrderItem{}, nil
}

func (m *mockOrderStore) ListTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.KitchenTicket, error) {
	if m.listTicketsByOrderFn != nil {
		return m.listTicketsByOrderFn(ctx, orderID)
	}
	return []database.KitchenTicket{}, nil
}

func (m *mockOrderStore) ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]database.KitchenTicketItem, error) {
	if m.listTicketItemsByTicketFn != nil {
		return m.listTicketItemsByTicketFn(ctx, ticketID)
	}
	return []database.KitchenTicketItem{}, nil
}

// --- Mock Notifier ---

type capturedEvent struct {
	RestaurantID uuid.UUID
	Event        ws.Event
}

type mockNotifier struct {
	events []capturedEvent
}

func (m *mockNotifier) BroadcastToRestaurant(restaurantID uuid.UUID, event ws.Event) {
	m.events = append(m.events, capturedEvent{RestaurantID: restaurantID, Event: event})
}

// --- Test helpers ---

const testJWTSecret = "test-secret-for-handlers"

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore, notify *mockNotifier) *chi.Mux {
	var n handler.Notifier
	if notify != nil {
		n = notify
	}
	h := handler.NewOrderHandler(svc, store, n)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}/orders", h.RegisterRoutes)
	return r
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.RestaurantID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func testClaims(restaurantID uuid.UUID) *auth.Claims {
	return &auth.Claims{
		UserID:       uuid.New(),
		RestaurantID: restaurantID,
		Role:         "WAITER",
	}
}

func makeNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		panic(err)
	}
	return n
}

func testOrder(restaurantID uuid.UUID) database.Order {
	return database.Order{
		ID:            uuid.New(),
		RestaurantID:  restaurantID,
		OrderNumber:   "ORD-0001",
		OrderType:     database.OrderTypeDINEIN,
		Status:        database.OrderStatusPENDING,
		Subtotal:      makeNumeric("250.00"),
		GrandTotal:    makeNumeric("236.25"),
		PaymentStatus: database.PaymentStatusPENDING,
		CreatedBy:     uuid.New(),
	}
}

func testTicket(restaurantID, orderID uuid.UUID) database.KitchenTicket {
	return database.KitchenTicket{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		OrderID:      orderID,
		TicketNumber: "KOT-0001",
		Status:       database.TicketStatusSENT,
	}
}

// --- Create ---

func TestCreateOrderHandler_Success(t *testing.T) {
	restaurantID := uuid.New()
	order := testOrder(restaurantID)
	ticket := testTicket(restaurantID, order.ID)

	var captured service.CreateOrderRequest
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			captured = req
			return &service.OrderResult{
				Order:   order,
				Tickets: []service.TicketResult{{Ticket: ticket}},
			}, nil
		},
	}
	notify := &mockNotifier{}
	router := setupOrderRouter(svc, &mockOrderStore{}, notify)
	claims := testClaims(restaurantID)

	body := map[string]interface{}{
		"order_type": "DINE_IN",
		"items": []map[string]interface{}{
			{"menu_item_id": uuid.NewString(), "quantity": 2},
		},
	}
	rr := doAuthRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/orders", body, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if captured.RestaurantID != restaurantID {
		t.Errorf("restaurant ID: got %v, want %v", captured.RestaurantID, restaurantID)
	}
	if captured.CreatedBy != claims.UserID {
		t.Errorf("created_by should come from the token, got %v", captured.CreatedBy)
	}
	resp := decodeBody(t, rr)
	if resp["order_number"] != "ORD-0001" {
		t.Errorf("order_number: got %v", resp["order_number"])
	}

	// The new ticket is pushed to the kitchen display.
	if len(notify.events) != 1 || notify.events[0].Event.Type != ws.EventTicketCreated {
		t.Fatalf("expected one ticket.created broadcast, got %+v", notify.events)
	}
	if notify.events[0].RestaurantID != restaurantID {
		t.Errorf("broadcast room: got %v, want %v", notify.events[0].RestaurantID, restaurantID)
	}
}

func TestCreateOrderHandler_MissingOrderType(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	restaurantID := uuid.New()
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	body := map[string]interface{}{
		"items": []map[string]interface{}{{"menu_item_id": uuid.NewString(), "quantity": 1}},
	}
	rr := doAuthRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/orders", body, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateOrderHandler_EmptyItems(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	restaurantID := uuid.New()
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	body := map[string]interface{}{"order_type": "DINE_IN", "items": []map[string]interface{}{}}
	rr := doAuthRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/orders", body, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateOrderHandler_ServiceValidationError(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			return nil, service.ErrMenuItemNotFound
		},
	}
	restaurantID := uuid.New()
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	body := map[string]interface{}{
		"order_type": "DINE_IN",
		"items":      []map[string]interface{}{{"menu_item_id": uuid.NewString(), "quantity": 1}},
	}
	rr := doAuthRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/orders", body, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateOrderHandler_TableOccupiedConflict(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			return nil, service.ErrTableOccupied
		},
	}
	restaurantID := uuid.New()
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	body := map[string]interface{}{
		"order_type": "DINE_IN",
		"table_id":   uuid.NewString(),
		"items":      []map[string]interface{}{{"menu_item_id": uuid.NewString(), "quantity": 1}},
	}
	rr := doAuthRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/orders", body, testClaims(restaurantID))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCreateOrderHandler_Unauthenticated(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, nil)

	req := httptest.NewRequest("POST", "/restaurants/"+uuid.NewString()+"/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- List ---

func TestListOrdersHandler_Filters(t *testing.T) {
	restaurantID := uuid.New()
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return []database.Order{testOrder(restaurantID)}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders?status=PENDING&type=DINE_IN&limit=10&offset=5"
	rr := doAuthRequest(t, router, "GET", path, nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !captured.Status.Valid || captured.Status.OrderStatus != database.OrderStatusPENDING {
		t.Errorf("status filter not passed: %+v", captured.Status)
	}
	if !captured.OrderType.Valid || captured.OrderType.OrderType != database.OrderTypeDINEIN {
		t.Errorf("type filter not passed: %+v", captured.OrderType)
	}
	if captured.Limit != 10 || captured.Offset != 5 {
		t.Errorf("pagination: got limit=%d offset=%d", captured.Limit, captured.Offset)
	}
}

func TestListOrdersHandler_LimitCapped(t *testing.T) {
	restaurantID := uuid.New()
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, nil)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/orders?limit=5000", nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if captured.Limit != 100 {
		t.Errorf("limit should cap at 100, got %d", captured.Limit)
	}
}

// --- Get ---

func TestGetOrderHandler_NotFound(t *testing.T) {
	restaurantID := uuid.New()
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, nil)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/orders/"+uuid.NewString(), nil, testClaims(restaurantID))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetOrderHandler_WithItemsAndTickets(t *testing.T) {
	restaurantID := uuid.New()
	order := testOrder(restaurantID)
	ticket := testTicket(restaurantID, order.ID)

	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			if arg.ID != order.ID || arg.RestaurantID != restaurantID {
				t.Errorf("unexpected lookup: %+v", arg)
			}
			return order, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{{
				ID: uuid.New(), OrderID: orderID, MenuItemID: uuid.New(),
				ItemName: "Masala Dosa", UnitPrice: makeNumeric("120.00"),
				Quantity: 2, LineTotal: makeNumeric("240.00"),
			}}, nil
		},
		listTicketsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.KitchenTicket, error) {
			return []database.KitchenTicket{ticket}, nil
		},
		listTicketItemsByTicketFn: func(ctx context.Context, ticketID uuid.UUID) ([]database.KitchenTicketItem, error) {
			return []database.KitchenTicketItem{{ID: uuid.New(), TicketID: ticketID, ItemName: "Masala Dosa", Quantity: 2, Status: database.TicketStatusSENT}}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, nil)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/orders/"+order.ID.String(), nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	items, _ := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("items: got %d, want 1", len(items))
	}
	tickets, _ := resp["tickets"].([]interface{})
	if len(tickets) != 1 {
		t.Errorf("tickets: got %d, want 1", len(tickets))
	}
}

// --- Edit ---

func TestEditOrderHandler_ItemsPresenceDetection(t *testing.T) {
	restaurantID := uuid.New()
	order := testOrder(restaurantID)

	var captured service.EditOrderRequest
	svc := &mockOrderService{
		editFn: func(ctx context.Context, req service.EditOrderRequest) (*service.OrderResult, error) {
			captured = req
			return &service.OrderResult{Order: order}, nil
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)
	claims := testClaims(restaurantID)
	path := "/restaurants/" + restaurantID.String() + "/orders/" + order.ID.String()

	// No items key: line set untouched.
	rr := doAuthRequest(t, router, "PUT", path, map[string]interface{}{"notes": "window seat"}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if captured.ItemsSet {
		t.Error("absent items key must not count as a replacement")
	}
	if captured.Notes == nil || *captured.Notes != "window seat" {
		t.Errorf("notes: got %v", captured.Notes)
	}

	// Items key present: full replacement, even of one line.
	body := map[string]interface{}{
		"items": []map[string]interface{}{{"menu_item_id": uuid.NewString(), "quantity": 3}},
	}
	rr = doAuthRequest(t, router, "PUT", path, body, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !captured.ItemsSet || len(captured.Items) != 1 {
		t.Errorf("items replacement not forwarded: %+v", captured)
	}
}

func TestEditOrderHandler_TerminalConflict(t *testing.T) {
	restaurantID := uuid.New()
	svc := &mockOrderService{
		editFn: func(ctx context.Context, req service.EditOrderRequest) (*service.OrderResult, error) {
			return nil, service.ErrOrderTerminal
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString()
	rr := doAuthRequest(t, router, "PUT", path, map[string]interface{}{"notes": "x"}, testClaims(restaurantID))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

// --- UpdateStatus ---

func TestUpdateStatusHandler_Success(t *testing.T) {
	restaurantID := uuid.New()
	order := testOrder(restaurantID)
	order.Status = database.OrderStatusCONFIRMED

	svc := &mockOrderService{
		transitionFn: func(ctx context.Context, rid, oid uuid.UUID, target database.OrderStatus) (*database.Order, error) {
			if target != database.OrderStatusCONFIRMED {
				t.Errorf("target: got %v, want CONFIRMED", target)
			}
			return &order, nil
		},
	}
	notify := &mockNotifier{}
	router := setupOrderRouter(svc, &mockOrderStore{}, notify)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + order.ID.String() + "/status"
	rr := doAuthRequest(t, router, "PATCH", path, map[string]string{"status": "CONFIRMED"}, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	if len(notify.events) != 1 || notify.events[0].Event.Type != ws.EventOrderStatusChanged {
		t.Errorf("expected order.status_changed broadcast, got %+v", notify.events)
	}
}

func TestUpdateStatusHandler_UnknownStatus(t *testing.T) {
	restaurantID := uuid.New()
	svc := &mockOrderService{
		transitionFn: func(ctx context.Context, rid, oid uuid.UUID, target database.OrderStatus) (*database.Order, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString() + "/status"
	rr := doAuthRequest(t, router, "PATCH", path, map[string]string{"status": "SHIPPED"}, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateStatusHandler_InvalidTransitionConflict(t *testing.T) {
	restaurantID := uuid.New()
	svc := &mockOrderService{
		transitionFn: func(ctx context.Context, rid, oid uuid.UUID, target database.OrderStatus) (*database.Order, error) {
			return nil, service.ErrInvalidTransition
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString() + "/status"
	rr := doAuthRequest(t, router, "PATCH", path, map[string]string{"status": "READY"}, testClaims(restaurantID))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestUpdateStatusHandler_ConcurrentChangeConflict(t *testing.T) {
	restaurantID := uuid.New()
	svc := &mockOrderService{
		transitionFn: func(ctx context.Context, rid, oid uuid.UUID, target database.OrderStatus) (*database.Order, error) {
			return nil, service.ErrTransitionConflict
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString() + "/status"
	rr := doAuthRequest(t, router, "PATCH", path, map[string]string{"status": "CONFIRMED"}, testClaims(restaurantID))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestUpdateStatusHandler_CancelledTargetRejected(t *testing.T) {
	restaurantID := uuid.New()
	svc := &mockOrderService{
		transitionFn: func(ctx context.Context, rid, oid uuid.UUID, target database.OrderStatus) (*database.Order, error) {
			return nil, service.ErrInvalidTargetStatus
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString() + "/status"
	rr := doAuthRequest(t, router, "PATCH", path, map[string]string{"status": "CANCELLED"}, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Cancel ---

func TestCancelOrderHandler_Success(t *testing.T) {
	restaurantID := uuid.New()
	order := testOrder(restaurantID)
	order.Status = database.OrderStatusCANCELLED

	var gotReason string
	var gotActor uuid.UUID
	svc := &mockOrderService{
		cancelFn: func(ctx context.Context, rid, oid, cancelledBy uuid.UUID, reason string) (*database.Order, error) {
			gotReason = reason
			gotActor = cancelledBy
			return &order, nil
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockNotifier{})
	claims := testClaims(restaurantID)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + order.ID.String() + "/cancel"
	rr := doAuthRequest(t, router, "POST", path, map[string]string{"reason": "guest left"}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if gotReason != "guest left" {
		t.Errorf("reason: got %q", gotReason)
	}
	if gotActor != claims.UserID {
		t.Errorf("actor should come from the token, got %v", gotActor)
	}
}

func TestCancelOrderHandler_TerminalConflict(t *testing.T) {
	restaurantID := uuid.New()
	svc := &mockOrderService{
		cancelFn: func(ctx context.Context, rid, oid, cancelledBy uuid.UUID, reason string) (*database.Order, error) {
			return nil, service.ErrOrderTerminal
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString() + "/cancel"
	rr := doAuthRequest(t, router, "POST", path, map[string]string{"reason": "late"}, testClaims(restaurantID))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

// --- SoftDelete ---

func TestSoftDeleteOrderHandler_NoContent(t *testing.T) {
	restaurantID := uuid.New()
	called := false
	svc := &mockOrderService{
		softDeleteFn: func(ctx context.Context, rid, oid uuid.UUID, reason string) error {
			called = true
			return nil
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, nil)

	path := "/restaurants/" + restaurantID.String() + "/orders/" + uuid.NewString()
	rr := doAuthRequest(t, router, "DELETE", path, map[string]string{"reason": "test data"}, testClaims(restaurantID))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if !called {
		t.Error("service not called")
	}
}
