package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxSequenceRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidOrderType     = errors.New("invalid order_type")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID    = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound     = errors.New("menu item not found or unavailable")
	ErrInvalidTableID       = errors.New("invalid table_id")
	ErrInvalidCustomerID    = errors.New("invalid customer_id")
	ErrOrderNotFound        = errors.New("order not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrTableOccupied        = errors.New("table is occupied by another order")
	ErrOrderTerminal        = errors.New("order is completed or cancelled")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrTransitionConflict   = errors.New("order status changed concurrently")
	ErrInvalidTargetStatus  = errors.New("invalid target status")
	ErrInvalidPricingInput  = errors.New("invalid pricing input")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, arg database.GetNextOrderNumberParams) (int32, error)
	GetNextTicketNumber(ctx context.Context, arg database.GetNextTicketNumberParams) (int32, error)
	GetMenuItemForOrder(ctx context.Context, arg database.GetMenuItemForOrderParams) (database.MenuItem, error)
	ListRecipeItemsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeItem, error)

	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderPricing(ctx context.Context, arg database.UpdateOrderPricingParams) (database.Order, error)
	UpdateOrderNotes(ctx context.Context, arg database.UpdateOrderNotesParams) (database.Order, error)
	UpdateOrderTable(ctx context.Context, arg database.UpdateOrderTableParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	SoftDeleteOrder(ctx context.Context, arg database.SoftDeleteOrderParams) (database.Order, error)
	SoftDeleteTicketsByOrder(ctx context.Context, orderID uuid.UUID) error

	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	UpdateOrderItem(ctx context.Context, arg database.UpdateOrderItemParams) (database.OrderItem, error)
	SoftDeleteOrderItem(ctx context.Context, id uuid.UUID) error
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)

	GetTableForUpdate(ctx context.Context, arg database.GetTableForUpdateParams) (database.DiningTable, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.DiningTable, error)
	FreeTableForOrder(ctx context.Context, arg database.FreeTableForOrderParams) (int64, error)

	CreateKitchenTicket(ctx context.Context, arg database.CreateKitchenTicketParams) (database.KitchenTicket, error)
	CreateKitchenTicketItem(ctx context.Context, arg database.CreateKitchenTicketItemParams) (database.KitchenTicketItem, error)

	GetStockItemForUpdate(ctx context.Context, arg database.GetStockItemForUpdateParams) (database.StockItem, error)
	UpdateStockQuantity(ctx context.Context, arg database.UpdateStockQuantityParams) (database.StockItem, error)
	CreateStockMovement(ctx context.Context, arg database.CreateStockMovementParams) (database.StockMovement, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	RestaurantID uuid.UUID
	CreatedBy    uuid.UUID
	OrderType    string
	TableID      string
	CustomerID   string
	Notes        string
	DiscountPct  string
	GstApplied   bool
	GstPct       string
	VatPct       string
	ExtraCharges string
	AmountPaid   string
	Items        []OrderLineRequest
}

// OrderLineRequest is a single line in a create or edit request.
type OrderLineRequest struct {
	MenuItemID string
	Quantity   int32
	Notes      string
}

// EditOrderRequest carries the optional replacements for an existing order.
// Nil Items leaves the line set untouched; nil Pricing keeps the stored
// rate fields. TableID distinguishes "unchanged" (nil) from "unassign"
// (pointer to empty string).
type EditOrderRequest struct {
	RestaurantID uuid.UUID
	OrderID      uuid.UUID
	Items        []OrderLineRequest
	ItemsSet     bool
	TableID      *string
	Pricing      *PricingFieldsRequest
	Notes        *string
}

// PricingFieldsRequest is the rate-field portion of a create/edit request.
type PricingFieldsRequest struct {
	DiscountPct  string
	GstApplied   bool
	GstPct       string
	VatPct       string
	ExtraCharges string
	AmountPaid   string
}

// OrderResult is the fully materialized order with its lines and tickets.
type OrderResult struct {
	Order   database.Order
	Items   []database.OrderItem
	Tickets []TicketResult
}

// TicketResult is a ticket with its lines.
type TicketResult struct {
	Ticket database.KitchenTicket
	Items  []database.KitchenTicketItem
}

// allowedOrderTransitions maps each status to the set of statuses it may
// move to. Completed and Cancelled are terminal.
var allowedOrderTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPENDING:   {database.OrderStatusCONFIRMED, database.OrderStatusPREPARING, database.OrderStatusCANCELLED},
	database.OrderStatusCONFIRMED: {database.OrderStatusPREPARING, database.OrderStatusCANCELLED},
	database.OrderStatusPREPARING: {database.OrderStatusREADY, database.OrderStatusCANCELLED},
	database.OrderStatusREADY:     {database.OrderStatusSERVED},
	database.OrderStatusSERVED:    {database.OrderStatusCOMPLETED},
}

func transitionAllowed(from, to database.OrderStatus) bool {
	for _, s := range allowedOrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func isTerminal(s database.OrderStatus) bool {
	return s == database.OrderStatusCOMPLETED || s == database.OrderStatusCANCELLED
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// resolvedLine is a prepared order line with its priced snapshot.
type resolvedLine struct {
	menuItemID uuid.UUID
	itemName   string
	unitPrice  decimal.Decimal
	quantity   int32
	isVeg      bool
	notes      pgtype.Text
	lineTotal  decimal.Decimal
}

// CreateOrder validates, prices, and creates an order atomically together
// with its lines, table binding, and kitchen ticket. Retries up to
// maxSequenceRetries times on document number unique constraint violations
// (concurrent transactions can read the same MAX suffix).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	orderType, err := validateOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	var lastErr error
	for attempt := 0; attempt < maxSequenceRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, orderType)
		if err == nil {
			return result, nil
		}
		if isSequenceConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, orderType database.OrderType) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx, database.GetNextOrderNumberParams{
		RestaurantID: req.RestaurantID,
		Prefix:       enum.SequencePrefixOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := FormatSequence(enum.SequencePrefixOrder, nextNum)

	lines, subtotal, err := s.resolveLines(ctx, store, req.RestaurantID, req.Items)
	if err != nil {
		return nil, err
	}

	pricing, err := pricingFromStrings(subtotal, PricingFieldsRequest{
		DiscountPct:  req.DiscountPct,
		GstApplied:   req.GstApplied,
		GstPct:       req.GstPct,
		VatPct:       req.VatPct,
		ExtraCharges: req.ExtraCharges,
		AmountPaid:   req.AmountPaid,
	})
	if err != nil {
		return nil, err
	}

	customerID := pgtype.UUID{}
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, ErrInvalidCustomerID
		}
		customerID = pgtype.UUID{Bytes: cid, Valid: true}
	}

	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID:   req.RestaurantID,
		OrderNumber:    orderNumber,
		CustomerID:     customerID,
		OrderType:      orderType,
		Status:         database.OrderStatusPENDING,
		Subtotal:       decimalToNumeric(pricing.Subtotal),
		DiscountPct:    decimalToNumeric(mustDecimal(req.DiscountPct)),
		DiscountAmount: decimalToNumeric(pricing.DiscountAmount),
		GstApplied:     req.GstApplied,
		GstPct:         decimalToNumeric(mustDecimal(req.GstPct)),
		GstAmount:      decimalToNumeric(pricing.GstAmount),
		VatPct:         decimalToNumeric(mustDecimal(req.VatPct)),
		VatAmount:      decimalToNumeric(pricing.VatAmount),
		TaxTotal:       decimalToNumeric(pricing.TaxTotal),
		ExtraCharges:   decimalToNumeric(pricing.ExtraCharges),
		GrandTotal:     decimalToNumeric(pricing.GrandTotal),
		AmountPaid:     decimalToNumeric(mustDecimal(req.AmountPaid)),
		PaymentStatus:  pricing.PaymentStatus,
		Notes:          notes,
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var items []database.OrderItem
	for _, line := range lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: line.menuItemID,
			ItemName:   line.itemName,
			UnitPrice:  decimalToNumeric(line.unitPrice),
			Quantity:   line.quantity,
			IsVeg:      line.isVeg,
			Notes:      line.notes,
			LineTotal:  decimalToNumeric(line.lineTotal),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	tableLabel := pgtype.Text{}
	if req.TableID != "" {
		tid, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		table, err := s.occupyTable(ctx, store, req.RestaurantID, tid, order.ID)
		if err != nil {
			return nil, err
		}
		tableLabel = pgtype.Text{String: table.Label, Valid: true}
		order, err = store.UpdateOrderTable(ctx, database.UpdateOrderTableParams{
			ID:      order.ID,
			TableID: pgtype.UUID{Bytes: tid, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("bind order table: %w", err)
		}
	}

	ticket, ticketItems, err := s.createTicket(ctx, store, order, items, tableLabel)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderResult{
		Order:   order,
		Items:   items,
		Tickets: []TicketResult{{Ticket: ticket, Items: ticketItems}},
	}, nil
}

// resolveLines validates each requested line against the catalog and builds
// the priced snapshots. Every referenced item must resolve individually; a
// single miss rejects the whole set.
func (s *OrderService) resolveLines(ctx context.Context, store OrderStore, restaurantID uuid.UUID, reqs []OrderLineRequest) ([]resolvedLine, decimal.Decimal, error) {
	subtotal := decimal.Zero
	var lines []resolvedLine
	for i, item := range reqs {
		if item.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		menuItem, err := store.GetMenuItemForOrder(ctx, database.GetMenuItemForOrderParams{
			ID:           menuItemID,
			RestaurantID: restaurantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, decimal.Zero, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}

		unitPrice := effectivePrice(menuItem)
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		subtotal = subtotal.Add(lineTotal)

		notes := pgtype.Text{}
		if item.Notes != "" {
			notes = pgtype.Text{String: item.Notes, Valid: true}
		}

		lines = append(lines, resolvedLine{
			menuItemID: menuItemID,
			itemName:   menuItem.Name,
			unitPrice:  unitPrice,
			quantity:   item.Quantity,
			isVeg:      menuItem.IsVeg,
			notes:      notes,
			lineTotal:  lineTotal,
		})
	}
	return lines, subtotal, nil
}

// effectivePrice prefers a positive discounted price over the list price.
func effectivePrice(m database.MenuItem) decimal.Decimal {
	if m.DiscountedPrice.Valid {
		d := numericToDecimal(m.DiscountedPrice)
		if d.IsPositive() {
			return d
		}
	}
	return numericToDecimal(m.Price)
}

// occupyTable claims a table for an order, distinguishing a missing table
// from one already held by another order.
func (s *OrderService) occupyTable(ctx context.Context, store OrderStore, restaurantID, tableID, orderID uuid.UUID) (database.DiningTable, error) {
	if _, err := store.GetTableForUpdate(ctx, database.GetTableForUpdateParams{
		ID:           tableID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.DiningTable{}, ErrTableNotFound
		}
		return database.DiningTable{}, fmt.Errorf("get table: %w", err)
	}
	table, err := store.OccupyTable(ctx, database.OccupyTableParams{
		ID:           tableID,
		RestaurantID: restaurantID,
		OrderID:      orderID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.DiningTable{}, ErrTableOccupied
		}
		return database.DiningTable{}, fmt.Errorf("occupy table: %w", err)
	}
	return table, nil
}

// createTicket creates the order's kitchen ticket with one line per order
// item, already in SENT state.
func (s *OrderService) createTicket(ctx context.Context, store OrderStore, order database.Order, items []database.OrderItem, tableLabel pgtype.Text) (database.KitchenTicket, []database.KitchenTicketItem, error) {
	nextNum, err := store.GetNextTicketNumber(ctx, database.GetNextTicketNumberParams{
		RestaurantID: order.RestaurantID,
		Prefix:       enum.SequencePrefixTicket,
	})
	if err != nil {
		return database.KitchenTicket{}, nil, fmt.Errorf("get next ticket number: %w", err)
	}

	ticket, err := store.CreateKitchenTicket(ctx, database.CreateKitchenTicketParams{
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
		TicketNumber: FormatSequence(enum.SequencePrefixTicket, nextNum),
		TableLabel:   tableLabel,
		Status:       database.TicketStatusSENT,
		Priority:     0,
		SentAt:       pgtype.Timestamptz{Time: order.CreatedAt, Valid: true},
	})
	if err != nil {
		return database.KitchenTicket{}, nil, fmt.Errorf("create kitchen ticket: %w", err)
	}

	var ticketItems []database.KitchenTicketItem
	for _, item := range items {
		ti, err := store.CreateKitchenTicketItem(ctx, database.CreateKitchenTicketItemParams{
			TicketID:    ticket.ID,
			OrderItemID: item.ID,
			ItemName:    item.ItemName,
			Quantity:    item.Quantity,
			IsVeg:       item.IsVeg,
			Notes:       item.Notes,
			Status:      database.TicketStatusSENT,
		})
		if err != nil {
			return database.KitchenTicket{}, nil, fmt.Errorf("create kitchen ticket item: %w", err)
		}
		ticketItems = append(ticketItems, ti)
	}
	return ticket, ticketItems, nil
}

// EditOrder applies line, table, and rate-field changes to an order and
// recomputes its totals from the persisted state, all in one transaction.
func (s *OrderService) EditOrder(ctx context.Context, req EditOrderRequest) (*OrderResult, error) {
	if req.ItemsSet && len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderForUpdateParams{
		ID:           req.OrderID,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if isTerminal(order.Status) {
		return nil, ErrOrderTerminal
	}

	if req.ItemsSet {
		if err := s.mergeLines(ctx, store, order, req.Items); err != nil {
			return nil, err
		}
	}

	if req.TableID != nil {
		order, err = s.swapTable(ctx, store, order, *req.TableID)
		if err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		notes := pgtype.Text{String: *req.Notes, Valid: *req.Notes != ""}
		order, err = store.UpdateOrderNotes(ctx, database.UpdateOrderNotesParams{
			ID:    order.ID,
			Notes: notes,
		})
		if err != nil {
			return nil, fmt.Errorf("update order notes: %w", err)
		}
	}

	// Totals come from the current persisted lines, not from the request,
	// so repeated edits cannot accumulate rounding drift.
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(numericToDecimal(item.LineTotal))
	}

	rates := PricingFieldsRequest{
		DiscountPct:  numericToDecimal(order.DiscountPct).String(),
		GstApplied:   order.GstApplied,
		GstPct:       numericToDecimal(order.GstPct).String(),
		VatPct:       numericToDecimal(order.VatPct).String(),
		ExtraCharges: numericToDecimal(order.ExtraCharges).String(),
		AmountPaid:   numericToDecimal(order.AmountPaid).String(),
	}
	if req.Pricing != nil {
		rates = *req.Pricing
	}
	pricing, err := pricingFromStrings(subtotal, rates)
	if err != nil {
		return nil, err
	}

	order, err = store.UpdateOrderPricing(ctx, database.UpdateOrderPricingParams{
		ID:             order.ID,
		Subtotal:       decimalToNumeric(pricing.Subtotal),
		DiscountPct:    decimalToNumeric(mustDecimal(rates.DiscountPct)),
		DiscountAmount: decimalToNumeric(pricing.DiscountAmount),
		GstApplied:     rates.GstApplied,
		GstPct:         decimalToNumeric(mustDecimal(rates.GstPct)),
		GstAmount:      decimalToNumeric(pricing.GstAmount),
		VatPct:         decimalToNumeric(mustDecimal(rates.VatPct)),
		VatAmount:      decimalToNumeric(pricing.VatAmount),
		TaxTotal:       decimalToNumeric(pricing.TaxTotal),
		ExtraCharges:   decimalToNumeric(pricing.ExtraCharges),
		GrandTotal:     decimalToNumeric(pricing.GrandTotal),
		AmountPaid:     decimalToNumeric(mustDecimal(rates.AmountPaid)),
		PaymentStatus:  pricing.PaymentStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("update order pricing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderResult{Order: order, Items: items}, nil
}

// mergeLines reconciles the requested line set against the persisted one,
// keyed by menu item id: matching lines are updated in place, absent ones
// are soft-removed, and new items are appended.
func (s *OrderService) mergeLines(ctx context.Context, store OrderStore, order database.Order, reqs []OrderLineRequest) error {
	resolved, _, err := s.resolveLines(ctx, store, order.RestaurantID, reqs)
	if err != nil {
		return err
	}

	existing, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	byMenuItem := make(map[uuid.UUID]database.OrderItem, len(existing))
	for _, item := range existing {
		byMenuItem[item.MenuItemID] = item
	}

	for _, line := range resolved {
		if current, ok := byMenuItem[line.menuItemID]; ok {
			delete(byMenuItem, line.menuItemID)
			_, err := store.UpdateOrderItem(ctx, database.UpdateOrderItemParams{
				ID:        current.ID,
				ItemName:  line.itemName,
				UnitPrice: decimalToNumeric(line.unitPrice),
				Quantity:  line.quantity,
				Notes:     line.notes,
				LineTotal: decimalToNumeric(line.lineTotal),
			})
			if err != nil {
				return fmt.Errorf("update order item: %w", err)
			}
			continue
		}
		_, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: line.menuItemID,
			ItemName:   line.itemName,
			UnitPrice:  decimalToNumeric(line.unitPrice),
			Quantity:   line.quantity,
			IsVeg:      line.isVeg,
			Notes:      line.notes,
			LineTotal:  decimalToNumeric(line.lineTotal),
		})
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	// Whatever is left was not in the new set.
	for _, item := range byMenuItem {
		if err := store.SoftDeleteOrderItem(ctx, item.ID); err != nil {
			return fmt.Errorf("soft delete order item: %w", err)
		}
	}
	return nil
}

// swapTable moves an order to a different table (or off tables entirely
// when tableID is empty), freeing the previous table only if it still
// points back at this order.
func (s *OrderService) swapTable(ctx context.Context, store OrderStore, order database.Order, tableID string) (database.Order, error) {
	newTableID := pgtype.UUID{}
	if tableID != "" {
		tid, err := uuid.Parse(tableID)
		if err != nil {
			return database.Order{}, ErrInvalidTableID
		}
		newTableID = pgtype.UUID{Bytes: tid, Valid: true}
	}
	if order.TableID.Valid && order.TableID == newTableID {
		return order, nil
	}

	if order.TableID.Valid {
		if _, err := store.FreeTableForOrder(ctx, database.FreeTableForOrderParams{
			ID:      order.TableID.Bytes,
			OrderID: order.ID,
		}); err != nil {
			return database.Order{}, fmt.Errorf("free table: %w", err)
		}
	}

	if newTableID.Valid {
		if _, err := s.occupyTable(ctx, store, order.RestaurantID, newTableID.Bytes, order.ID); err != nil {
			return database.Order{}, err
		}
	}

	order, err := store.UpdateOrderTable(ctx, database.UpdateOrderTableParams{
		ID:      order.ID,
		TableID: newTableID,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("bind order table: %w", err)
	}
	return order, nil
}

// TransitionStatus moves an order through its state machine. Stock is
// deducted exactly once, on entry to CONFIRMED or on PREPARING reached
// directly from PENDING. On SERVED or COMPLETED the bound table is freed
// if it still points at this order.
func (s *OrderService) TransitionStatus(ctx context.Context, restaurantID, orderID uuid.UUID, target database.OrderStatus) (*database.Order, error) {
	switch target {
	case database.OrderStatusCONFIRMED, database.OrderStatusPREPARING, database.OrderStatusREADY,
		database.OrderStatusSERVED, database.OrderStatusCOMPLETED:
	case database.OrderStatusCANCELLED:
		// Cancellation has its own entry point that records metadata.
		return nil, ErrInvalidTargetStatus
	default:
		return nil, ErrInvalidTargetStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderForUpdateParams{
		ID:           orderID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !transitionAllowed(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	from := order.Status
	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		Status:       target,
		FromStatus:   from,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransitionConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	deduct := target == database.OrderStatusCONFIRMED ||
		(target == database.OrderStatusPREPARING && from == database.OrderStatusPENDING)
	if deduct {
		if err := deductOrderStock(ctx, store, updated); err != nil {
			return nil, err
		}
	}

	if target == database.OrderStatusSERVED || target == database.OrderStatusCOMPLETED {
		if err := releaseOrderTable(ctx, store, updated); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

// releaseOrderTable frees the order's table if it still points back at the
// order. The order keeps its table reference for history.
func releaseOrderTable(ctx context.Context, store OrderStore, order database.Order) error {
	if !order.TableID.Valid {
		return nil
	}
	if _, err := store.FreeTableForOrder(ctx, database.FreeTableForOrderParams{
		ID:      order.TableID.Bytes,
		OrderID: order.ID,
	}); err != nil {
		return fmt.Errorf("free table: %w", err)
	}
	return nil
}

// Cancel marks the order cancelled with actor and reason, and frees its
// table. Stock already deducted stays deducted.
func (s *OrderService) Cancel(ctx context.Context, restaurantID, orderID, cancelledBy uuid.UUID, reason string) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	cancelReason := pgtype.Text{}
	if reason != "" {
		cancelReason = pgtype.Text{String: reason, Valid: true}
	}
	order, err := store.CancelOrder(ctx, database.CancelOrderParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		CancelledBy:  cancelledBy,
		CancelReason: cancelReason,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish missing from terminal.
			if _, getErr := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID}); getErr != nil {
				return nil, ErrOrderNotFound
			}
			return nil, ErrOrderTerminal
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if err := releaseOrderTable(ctx, store, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &order, nil
}

// SoftDelete hides the order from normal queries regardless of status and
// frees its table. It is an administrative override, not a transition.
func (s *OrderService) SoftDelete(ctx context.Context, restaurantID, orderID uuid.UUID, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	deleteReason := pgtype.Text{}
	if reason != "" {
		deleteReason = pgtype.Text{String: reason, Valid: true}
	}
	order, err := store.SoftDeleteOrder(ctx, database.SoftDeleteOrderParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		DeleteReason: deleteReason,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("soft delete order: %w", err)
	}

	// Deleting the order retires its kitchen tickets too, so the display
	// never keeps escalating work that no longer exists.
	if err := store.SoftDeleteTicketsByOrder(ctx, order.ID); err != nil {
		return fmt.Errorf("soft delete tickets: %w", err)
	}

	if err := releaseOrderTable(ctx, store, order); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// --- Helpers ---

func validateOrderType(s string) (database.OrderType, error) {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return database.OrderType(s), nil
	}
	return "", ErrInvalidOrderType
}

// pricingFromStrings parses the string rate fields of a request and runs
// the pricing calculation.
func pricingFromStrings(subtotal decimal.Decimal, rates PricingFieldsRequest) (PricingResult, error) {
	discountPct, err := parseDecimalField(rates.DiscountPct)
	if err != nil {
		return PricingResult{}, fmt.Errorf("%w: discount_pct", ErrInvalidPricingInput)
	}
	gstPct, err := parseDecimalField(rates.GstPct)
	if err != nil {
		return PricingResult{}, fmt.Errorf("%w: gst_pct", ErrInvalidPricingInput)
	}
	vatPct, err := parseDecimalField(rates.VatPct)
	if err != nil {
		return PricingResult{}, fmt.Errorf("%w: vat_pct", ErrInvalidPricingInput)
	}
	extraCharges, err := parseDecimalField(rates.ExtraCharges)
	if err != nil {
		return PricingResult{}, fmt.Errorf("%w: extra_charges", ErrInvalidPricingInput)
	}
	amountPaid, err := parseDecimalField(rates.AmountPaid)
	if err != nil {
		return PricingResult{}, fmt.Errorf("%w: amount_paid", ErrInvalidPricingInput)
	}
	return CalculatePricing(PricingInputs{
		Subtotal:     subtotal,
		DiscountPct:  discountPct,
		GstApplied:   rates.GstApplied,
		GstPct:       gstPct,
		VatPct:       vatPct,
		ExtraCharges: extraCharges,
		AmountPaid:   amountPaid,
	})
}

// parseDecimalField treats an empty string as zero.
func parseDecimalField(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// mustDecimal is for fields already validated by pricingFromStrings.
func mustDecimal(s string) decimal.Decimal {
	d, _ := parseDecimalField(s)
	return d
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
