package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, restaurant_id, order_number, table_id, customer_id, order_type, status,
	subtotal, discount_pct, discount_amount, gst_applied, gst_pct, gst_amount, vat_pct, vat_amount,
	tax_total, extra_charges, grand_total, amount_paid, payment_status, notes,
	cancelled_at, cancelled_by, cancel_reason, is_deleted, deleted_at, delete_reason,
	created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.OrderNumber, &o.TableID, &o.CustomerID, &o.OrderType, &o.Status,
		&o.Subtotal, &o.DiscountPct, &o.DiscountAmount, &o.GstApplied, &o.GstPct, &o.GstAmount,
		&o.VatPct, &o.VatAmount, &o.TaxTotal, &o.ExtraCharges, &o.GrandTotal, &o.AmountPaid,
		&o.PaymentStatus, &o.Notes, &o.CancelledAt, &o.CancelledBy, &o.CancelReason,
		&o.IsDeleted, &o.DeletedAt, &o.DeleteReason, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM CHAR_LENGTH($2::text) + 1) AS INTEGER)), 0) + 1
FROM orders
WHERE restaurant_id = $1 AND order_number LIKE $2::text || '%'
`

type GetNextOrderNumberParams struct {
	RestaurantID uuid.UUID
	Prefix       string
}

// GetNextOrderNumber scans existing order numbers sharing the prefix and
// returns the highest suffix + 1. Concurrent callers may receive the same
// value; the unique constraint on (restaurant_id, order_number) catches it.
func (q *Queries) GetNextOrderNumber(ctx context.Context, arg GetNextOrderNumberParams) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber, arg.RestaurantID, arg.Prefix).Scan(&n)
	return n, err
}

const createOrder = `
INSERT INTO orders (
	restaurant_id, order_number, table_id, customer_id, order_type, status,
	subtotal, discount_pct, discount_amount, gst_applied, gst_pct, gst_amount, vat_pct, vat_amount,
	tax_total, extra_charges, grand_total, amount_paid, payment_status, notes, created_by
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	RestaurantID   uuid.UUID
	OrderNumber    string
	TableID        pgtype.UUID
	CustomerID     pgtype.UUID
	OrderType      OrderType
	Status         OrderStatus
	Subtotal       pgtype.Numeric
	DiscountPct    pgtype.Numeric
	DiscountAmount pgtype.Numeric
	GstApplied     bool
	GstPct         pgtype.Numeric
	GstAmount      pgtype.Numeric
	VatPct         pgtype.Numeric
	VatAmount      pgtype.Numeric
	TaxTotal       pgtype.Numeric
	ExtraCharges   pgtype.Numeric
	GrandTotal     pgtype.Numeric
	AmountPaid     pgtype.Numeric
	PaymentStatus  PaymentStatus
	Notes          pgtype.Text
	CreatedBy      uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.RestaurantID, arg.OrderNumber, arg.TableID, arg.CustomerID, arg.OrderType, arg.Status,
		arg.Subtotal, arg.DiscountPct, arg.DiscountAmount, arg.GstApplied, arg.GstPct, arg.GstAmount,
		arg.VatPct, arg.VatAmount, arg.TaxTotal, arg.ExtraCharges, arg.GrandTotal, arg.AmountPaid,
		arg.PaymentStatus, arg.Notes, arg.CreatedBy,
	)
	return scanOrder(row)
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2 AND NOT is_deleted
`

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.RestaurantID))
}

const getOrderForUpdate = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2 AND NOT is_deleted
FOR NO KEY UPDATE
`

type GetOrderForUpdateParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderForUpdateParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, arg.ID, arg.RestaurantID))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE restaurant_id = $1
  AND NOT is_deleted
  AND ($2::text IS NULL OR status = $2::text)
  AND ($3::text IS NULL OR order_type = $3::text)
  AND ($4::timestamptz IS NULL OR created_at >= $4::timestamptz)
  AND ($5::timestamptz IS NULL OR created_at < $5::timestamptz)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7
`

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	Status       NullOrderStatus
	OrderType    NullOrderType
	StartDate    pgtype.Timestamptz
	EndDate      pgtype.Timestamptz
	Limit        int32
	Offset       int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.RestaurantID, arg.Status, arg.OrderType, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND status = $4 AND NOT is_deleted
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Status       OrderStatus
	FromStatus   OrderStatus
}

// UpdateOrderStatus performs an optimistic status swap: zero rows (ErrNoRows)
// means the order moved under us since it was read.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.RestaurantID, arg.Status, arg.FromStatus)
	return scanOrder(row)
}

const updateOrderPricing = `
UPDATE orders
SET subtotal = $2, discount_pct = $3, discount_amount = $4,
    gst_applied = $5, gst_pct = $6, gst_amount = $7, vat_pct = $8, vat_amount = $9,
    tax_total = $10, extra_charges = $11, grand_total = $12, amount_paid = $13,
    payment_status = $14, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderPricingParams struct {
	ID             uuid.UUID
	Subtotal       pgtype.Numeric
	DiscountPct    pgtype.Numeric
	DiscountAmount pgtype.Numeric
	GstApplied     bool
	GstPct         pgtype.Numeric
	GstAmount      pgtype.Numeric
	VatPct         pgtype.Numeric
	VatAmount      pgtype.Numeric
	TaxTotal       pgtype.Numeric
	ExtraCharges   pgtype.Numeric
	GrandTotal     pgtype.Numeric
	AmountPaid     pgtype.Numeric
	PaymentStatus  PaymentStatus
}

func (q *Queries) UpdateOrderPricing(ctx context.Context, arg UpdateOrderPricingParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderPricing,
		arg.ID, arg.Subtotal, arg.DiscountPct, arg.DiscountAmount,
		arg.GstApplied, arg.GstPct, arg.GstAmount, arg.VatPct, arg.VatAmount,
		arg.TaxTotal, arg.ExtraCharges, arg.GrandTotal, arg.AmountPaid, arg.PaymentStatus,
	)
	return scanOrder(row)
}

const updateOrderNotes = `
UPDATE orders
SET notes = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderNotesParams struct {
	ID    uuid.UUID
	Notes pgtype.Text
}

func (q *Queries) UpdateOrderNotes(ctx context.Context, arg UpdateOrderNotesParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderNotes, arg.ID, arg.Notes))
}

const updateOrderTable = `
UPDATE orders
SET table_id = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderTableParams struct {
	ID      uuid.UUID
	TableID pgtype.UUID
}

func (q *Queries) UpdateOrderTable(ctx context.Context, arg UpdateOrderTableParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderTable, arg.ID, arg.TableID))
}

const cancelOrder = `
UPDATE orders
SET status = 'CANCELLED', cancelled_at = now(), cancelled_by = $3, cancel_reason = $4, updated_at = now()
WHERE id = $1 AND restaurant_id = $2
  AND status NOT IN ('COMPLETED', 'CANCELLED')
  AND NOT is_deleted
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	CancelledBy  uuid.UUID
	CancelReason pgtype.Text
}

// CancelOrder enforces the precondition atomically: zero rows means the order
// is missing, already terminal, or deleted.
func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.RestaurantID, arg.CancelledBy, arg.CancelReason)
	return scanOrder(row)
}

const softDeleteOrder = `
UPDATE orders
SET is_deleted = true, deleted_at = now(), delete_reason = $3, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND NOT is_deleted
RETURNING ` + orderColumns

type SoftDeleteOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	DeleteReason pgtype.Text
}

func (q *Queries) SoftDeleteOrder(ctx context.Context, arg SoftDeleteOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, softDeleteOrder, arg.ID, arg.RestaurantID, arg.DeleteReason)
	return scanOrder(row)
}

const orderItemColumns = `id, order_id, menu_item_id, item_name, unit_price, quantity, is_veg,
	notes, line_total, is_deleted, created_at, updated_at`

func scanOrderItem(row pgx.Row) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID, &i.OrderID, &i.MenuItemID, &i.ItemName, &i.UnitPrice, &i.Quantity, &i.IsVeg,
		&i.Notes, &i.LineTotal, &i.IsDeleted, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, item_name, unit_price, quantity, is_veg, notes, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	ItemName   string
	UnitPrice  pgtype.Numeric
	Quantity   int32
	IsVeg      bool
	Notes      pgtype.Text
	LineTotal  pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.ItemName, arg.UnitPrice, arg.Quantity, arg.IsVeg,
		arg.Notes, arg.LineTotal,
	)
	return scanOrderItem(row)
}

const updateOrderItem = `
UPDATE order_items
SET item_name = $2, unit_price = $3, quantity = $4, notes = $5, line_total = $6, updated_at = now()
WHERE id = $1 AND NOT is_deleted
RETURNING ` + orderItemColumns

type UpdateOrderItemParams struct {
	ID        uuid.UUID
	ItemName  string
	UnitPrice pgtype.Numeric
	Quantity  int32
	Notes     pgtype.Text
	LineTotal pgtype.Numeric
}

func (q *Queries) UpdateOrderItem(ctx context.Context, arg UpdateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, updateOrderItem,
		arg.ID, arg.ItemName, arg.UnitPrice, arg.Quantity, arg.Notes, arg.LineTotal,
	)
	return scanOrderItem(row)
}

const softDeleteOrderItem = `
UPDATE order_items
SET is_deleted = true, updated_at = now()
WHERE id = $1
`

func (q *Queries) SoftDeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, softDeleteOrderItem, id)
	return err
}

const listOrderItemsByOrder = `
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1 AND NOT is_deleted
ORDER BY created_at, id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
