package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/middleware"
	"github.com/dineops/api/internal/service"
	"github.com/dineops/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	EditOrder(ctx context.Context, req service.EditOrderRequest) (*service.OrderResult, error)
	TransitionStatus(ctx context.Context, restaurantID, orderID uuid.UUID, target database.OrderStatus) (*database.Order, error)
	Cancel(ctx context.Context, restaurantID, orderID, cancelledBy uuid.UUID, reason string) (*database.Order, error)
	SoftDelete(ctx context.Context, restaurantID, orderID uuid.UUID, reason string) error
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.KitchenTicket, error)
	ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]database.KitchenTicketItem, error)
}

// Notifier pushes events to connected kitchen display clients.
// Satisfied by *ws.Hub.
type Notifier interface {
	BroadcastToRestaurant(restaurantID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	store  OrderStore
	notify Notifier
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, notify Notifier) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, notify: notify}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter: /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Edit)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
	r.Delete("/{id}", h.SoftDelete)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType    string                   `json:"order_type"`
	TableID      string                   `json:"table_id"`
	CustomerID   string                   `json:"customer_id"`
	Notes        string                   `json:"notes"`
	DiscountPct  string                   `json:"discount_pct"`
	GstApplied   bool                     `json:"gst_applied"`
	GstPct       string                   `json:"gst_pct"`
	VatPct       string                   `json:"vat_pct"`
	ExtraCharges string                   `json:"extra_charges"`
	AmountPaid   string                   `json:"amount_paid"`
	Items        []orderLineRequest       `json:"items"`
}

type orderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Notes      string `json:"notes"`
}

type editOrderRequest struct {
	Items   *[]orderLineRequest `json:"items"`
	TableID *string             `json:"table_id"`
	Notes   *string             `json:"notes"`
	Pricing *pricingRequest     `json:"pricing"`
}

type pricingRequest struct {
	DiscountPct  string `json:"discount_pct"`
	GstApplied   bool   `json:"gst_applied"`
	GstPct       string `json:"gst_pct"`
	VatPct       string `json:"vat_pct"`
	ExtraCharges string `json:"extra_charges"`
	AmountPaid   string `json:"amount_paid"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type deleteOrderRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	RestaurantID   uuid.UUID           `json:"restaurant_id"`
	OrderNumber    string              `json:"order_number"`
	TableID        *string             `json:"table_id"`
	CustomerID     *string             `json:"customer_id"`
	OrderType      string              `json:"order_type"`
	Status         string              `json:"status"`
	Subtotal       string              `json:"subtotal"`
	DiscountPct    string              `json:"discount_pct"`
	DiscountAmount string              `json:"discount_amount"`
	GstApplied     bool                `json:"gst_applied"`
	GstPct         string              `json:"gst_pct"`
	GstAmount      string              `json:"gst_amount"`
	VatPct         string              `json:"vat_pct"`
	VatAmount      string              `json:"vat_amount"`
	TaxTotal       string              `json:"tax_total"`
	ExtraCharges   string              `json:"extra_charges"`
	GrandTotal     string              `json:"grand_total"`
	AmountPaid     string              `json:"amount_paid"`
	PaymentStatus  string              `json:"payment_status"`
	Notes          *string             `json:"notes"`
	CancelReason   *string             `json:"cancel_reason"`
	CreatedBy      uuid.UUID           `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []orderItemResponse `json:"items,omitempty"`
	Tickets        []ticketResponse    `json:"tickets,omitempty"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	ItemName   string    `json:"item_name"`
	UnitPrice  string    `json:"unit_price"`
	Quantity   int32     `json:"quantity"`
	IsVeg      bool      `json:"is_veg"`
	Notes      *string   `json:"notes"`
	LineTotal  string    `json:"line_total"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Handlers ---

// Create handles POST /restaurants/{rid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OrderType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_type is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	for i, item := range req.Items {
		if item.MenuItemID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "menu_item_id is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantID: restaurantID,
		CreatedBy:    claims.UserID,
		OrderType:    req.OrderType,
		TableID:      req.TableID,
		CustomerID:   req.CustomerID,
		Notes:        req.Notes,
		DiscountPct:  req.DiscountPct,
		GstApplied:   req.GstApplied,
		GstPct:       req.GstPct,
		VatPct:       req.VatPct,
		ExtraCharges: req.ExtraCharges,
		AmountPaid:   req.AmountPaid,
		Items:        toServiceLines(req.Items),
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if errors.Is(err, service.ErrTableOccupied) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		if errors.Is(err, service.ErrTableNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result)
	for _, t := range resp.Tickets {
		h.broadcast(restaurantID, ws.EventTicketCreated, t)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /restaurants/{rid}/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	// Parse pagination
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListOrdersParams{
		RestaurantID: restaurantID,
		Limit:        int32(limit),
		Offset:       int32(offset),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		params.Status = database.NullOrderStatus{OrderStatus: database.OrderStatus(s), Valid: true}
	}
	if s := r.URL.Query().Get("type"); s != "" {
		params.OrderType = database.NullOrderType{OrderType: database.OrderType(s), Valid: true}
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date format, use YYYY-MM-DD"})
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date format, use YYYY-MM-DD"})
			return
		}
		params.EndDate = pgtype.Timestamptz{Time: t, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{
		ID:           orderID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tickets, err := h.store.ListTicketsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list tickets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, item := range items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	resp.Tickets = make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		ticketItems, err := h.store.ListTicketItemsByTicket(r.Context(), t.ID)
		if err != nil {
			log.Printf("ERROR: list ticket items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp.Tickets[i] = dbTicketToResponse(t, ticketItems)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Edit handles PUT /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	var req editOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcReq := service.EditOrderRequest{
		RestaurantID: restaurantID,
		OrderID:      orderID,
		TableID:      req.TableID,
		Notes:        req.Notes,
	}
	if req.Items != nil {
		svcReq.Items = toServiceLines(*req.Items)
		svcReq.ItemsSet = true
	}
	if req.Pricing != nil {
		svcReq.Pricing = &service.PricingFieldsRequest{
			DiscountPct:  req.Pricing.DiscountPct,
			GstApplied:   req.Pricing.GstApplied,
			GstPct:       req.Pricing.GstPct,
			VatPct:       req.Pricing.VatPct,
			ExtraCharges: req.Pricing.ExtraCharges,
			AmountPaid:   req.Pricing.AmountPaid,
		}
	}

	result, err := h.svc.EditOrder(r.Context(), svcReq)
	if err != nil {
		switch {
		case isOrderValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrTableNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderTerminal), errors.Is(err, service.ErrTableOccupied):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: edit order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

// UpdateStatus handles PATCH /restaurants/{rid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	target := database.OrderStatus(req.Status)
	if !isValidOrderStatus(target) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	updated, err := h.svc.TransitionStatus(r.Context(), restaurantID, orderID, target)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTargetStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrOrderTerminal):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrTransitionConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
		default:
			log.Printf("ERROR: update order status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := dbOrderToResponse(*updated)
	h.broadcast(restaurantID, ws.EventOrderStatusChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles POST /restaurants/{rid}/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cancelled, err := h.svc.Cancel(r.Context(), restaurantID, orderID, claims.UserID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrOrderTerminal):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: cancel order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := dbOrderToResponse(*cancelled)
	h.broadcast(restaurantID, ws.EventOrderStatusChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// SoftDelete handles DELETE /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := h.parseOrderPath(w, r)
	if !ok {
		return
	}

	var req deleteOrderRequest
	if r.Body != nil {
		// Body is optional for deletes.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.svc.SoftDelete(r.Context(), restaurantID, orderID, req.Reason); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *OrderHandler) parseOrderPath(w http.ResponseWriter, r *http.Request) (restaurantID, orderID uuid.UUID, ok bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return uuid.Nil, uuid.Nil, false
	}
	orderID, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, orderID, true
}

func (h *OrderHandler) broadcast(restaurantID uuid.UUID, eventType string, payload interface{}) {
	if h.notify == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.notify.BroadcastToRestaurant(restaurantID, ws.Event{Type: eventType, Payload: data})
}

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

func toServiceLines(items []orderLineRequest) []service.OrderLineRequest {
	lines := make([]service.OrderLineRequest, len(items))
	for i, item := range items {
		lines[i] = service.OrderLineRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		}
	}
	return lines
}

// isOrderValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrInvalidTableID) ||
		errors.Is(err, service.ErrInvalidCustomerID) ||
		errors.Is(err, service.ErrInvalidPricingInput) ||
		errors.Is(err, service.ErrInvalidDiscountPct) ||
		errors.Is(err, service.ErrInvalidTaxPct) ||
		errors.Is(err, service.ErrInvalidExtraCharge) ||
		errors.Is(err, service.ErrInvalidAmountPaid)
}

func isValidOrderStatus(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusPENDING,
		database.OrderStatusCONFIRMED,
		database.OrderStatusPREPARING,
		database.OrderStatusREADY,
		database.OrderStatusSERVED,
		database.OrderStatusCOMPLETED,
		database.OrderStatusCANCELLED:
		return true
	}
	return false
}

func toOrderResponse(result *service.OrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	resp.Tickets = make([]ticketResponse, len(result.Tickets))
	for i, t := range result.Tickets {
		resp.Tickets[i] = dbTicketToResponse(t.Ticket, t.Items)
	}
	return resp
}

// dbOrderToResponse converts a database.Order to an orderResponse without
// its lines or tickets.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		RestaurantID:   o.RestaurantID,
		OrderNumber:    o.OrderNumber,
		OrderType:      string(o.OrderType),
		Status:         string(o.Status),
		Subtotal:       numericToString(o.Subtotal),
		DiscountPct:    numericToString(o.DiscountPct),
		DiscountAmount: numericToString(o.DiscountAmount),
		GstApplied:     o.GstApplied,
		GstPct:         numericToString(o.GstPct),
		GstAmount:      numericToString(o.GstAmount),
		VatPct:         numericToString(o.VatPct),
		VatAmount:      numericToString(o.VatAmount),
		TaxTotal:       numericToString(o.TaxTotal),
		ExtraCharges:   numericToString(o.ExtraCharges),
		GrandTotal:     numericToString(o.GrandTotal),
		AmountPaid:     numericToString(o.AmountPaid),
		PaymentStatus:  string(o.PaymentStatus),
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if o.TableID.Valid {
		s := uuid.UUID(o.TableID.Bytes).String()
		resp.TableID = &s
	}
	if o.CustomerID.Valid {
		s := uuid.UUID(o.CustomerID.Bytes).String()
		resp.CustomerID = &s
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.CancelReason.Valid {
		resp.CancelReason = &o.CancelReason.String
	}

	return resp
}

func dbOrderItemToResponse(item database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:         item.ID,
		MenuItemID: item.MenuItemID,
		ItemName:   item.ItemName,
		UnitPrice:  numericToString(item.UnitPrice),
		Quantity:   item.Quantity,
		IsVeg:      item.IsVeg,
		LineTotal:  numericToString(item.LineTotal),
	}
	if item.Notes.Valid {
		resp.Notes = &item.Notes.String
	}
	return resp
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
