package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const ticketColumns = `id, restaurant_id, order_id, ticket_number, table_label, status, priority,
	sent_at, acknowledged_at, started_at, completed_at, last_printed_at, print_count,
	is_deleted, created_at, updated_at`

func scanTicket(row pgx.Row) (KitchenTicket, error) {
	var t KitchenTicket
	err := row.Scan(
		&t.ID, &t.RestaurantID, &t.OrderID, &t.TicketNumber, &t.TableLabel, &t.Status, &t.Priority,
		&t.SentAt, &t.AcknowledgedAt, &t.StartedAt, &t.CompletedAt, &t.LastPrintedAt, &t.PrintCount,
		&t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

const getNextTicketNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(ticket_number FROM CHAR_LENGTH($2::text) + 1) AS INTEGER)), 0) + 1
FROM kitchen_tickets
WHERE restaurant_id = $1 AND ticket_number LIKE $2::text || '%'
`

type GetNextTicketNumberParams struct {
	RestaurantID uuid.UUID
	Prefix       string
}

func (q *Queries) GetNextTicketNumber(ctx context.Context, arg GetNextTicketNumberParams) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextTicketNumber, arg.RestaurantID, arg.Prefix).Scan(&n)
	return n, err
}

const createKitchenTicket = `
INSERT INTO kitchen_tickets (restaurant_id, order_id, ticket_number, table_label, status, priority, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + ticketColumns

type CreateKitchenTicketParams struct {
	RestaurantID uuid.UUID
	OrderID      uuid.UUID
	TicketNumber string
	TableLabel   pgtype.Text
	Status       TicketStatus
	Priority     int32
	SentAt       pgtype.Timestamptz
}

func (q *Queries) CreateKitchenTicket(ctx context.Context, arg CreateKitchenTicketParams) (KitchenTicket, error) {
	row := q.db.QueryRow(ctx, createKitchenTicket,
		arg.RestaurantID, arg.OrderID, arg.TicketNumber, arg.TableLabel, arg.Status, arg.Priority, arg.SentAt,
	)
	return scanTicket(row)
}

const getTicket = `
SELECT ` + ticketColumns + `
FROM kitchen_tickets
WHERE id = $1 AND restaurant_id = $2 AND NOT is_deleted
`

type GetTicketParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetTicket(ctx context.Context, arg GetTicketParams) (KitchenTicket, error) {
	return scanTicket(q.db.QueryRow(ctx, getTicket, arg.ID, arg.RestaurantID))
}

const getTicketForUpdate = `
SELECT ` + ticketColumns + `
FROM kitchen_tickets
WHERE id = $1 AND restaurant_id = $2 AND NOT is_deleted
FOR NO KEY UPDATE
`

type GetTicketForUpdateParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetTicketForUpdate(ctx context.Context, arg GetTicketForUpdateParams) (KitchenTicket, error) {
	return scanTicket(q.db.QueryRow(ctx, getTicketForUpdate, arg.ID, arg.RestaurantID))
}

const listTicketsByOrder = `
SELECT ` + ticketColumns + `
FROM kitchen_tickets
WHERE order_id = $1 AND NOT is_deleted
ORDER BY created_at
`

func (q *Queries) ListTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]KitchenTicket, error) {
	rows, err := q.db.Query(ctx, listTicketsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KitchenTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const listActiveTickets = `
SELECT ` + ticketColumns + `
FROM kitchen_tickets
WHERE restaurant_id = $1
  AND status IN ('SENT', 'ACKNOWLEDGED', 'PREPARING', 'READY')
  AND created_at >= $2 AND created_at < $3
  AND NOT is_deleted
ORDER BY priority DESC, sent_at ASC
`

type ListActiveTicketsParams struct {
	RestaurantID uuid.UUID
	DayStart     pgtype.Timestamptz
	DayEnd       pgtype.Timestamptz
}

// ListActiveTickets returns the current day's open tickets, oldest
// unacknowledged first within each priority band.
func (q *Queries) ListActiveTickets(ctx context.Context, arg ListActiveTicketsParams) ([]KitchenTicket, error) {
	rows, err := q.db.Query(ctx, listActiveTickets, arg.RestaurantID, arg.DayStart, arg.DayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KitchenTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const acknowledgeTicket = `
UPDATE kitchen_tickets
SET status = 'ACKNOWLEDGED', acknowledged_at = now(), updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND status = 'SENT' AND NOT is_deleted
RETURNING ` + ticketColumns

type AcknowledgeTicketParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) AcknowledgeTicket(ctx context.Context, arg AcknowledgeTicketParams) (KitchenTicket, error) {
	return scanTicket(q.db.QueryRow(ctx, acknowledgeTicket, arg.ID, arg.RestaurantID))
}

const startTicket = `
UPDATE kitchen_tickets
SET status = 'PREPARING', started_at = now(),
    acknowledged_at = COALESCE(acknowledged_at, now()), updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND status IN ('SENT', 'ACKNOWLEDGED') AND NOT is_deleted
RETURNING ` + ticketColumns

type StartTicketParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// StartTicket moves a ticket to PREPARING, backfilling the acknowledgement
// timestamp when the acknowledge step was skipped.
func (q *Queries) StartTicket(ctx context.Context, arg StartTicketParams) (KitchenTicket, error) {
	return scanTicket(q.db.QueryRow(ctx, startTicket, arg.ID, arg.RestaurantID))
}

const markTicketReady = `
UPDATE kitchen_tickets
SET status = 'READY', completed_at = now(), updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND status = 'PREPARING' AND NOT is_deleted
RETURNING ` + ticketColumns

type MarkTicketReadyParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) MarkTicketReady(ctx context.Context, arg MarkTicketReadyParams) (KitchenTicket, error) {
	return scanTicket(q.db.QueryRow(ctx, markTicketReady, arg.ID, arg.RestaurantID))
}

const markTicketPrinted = `
UPDATE kitchen_tickets
SET print_count = print_count + 1, last_printed_at = now(), updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND NOT is_deleted
RETURNING ` + ticketColumns

type MarkTicketPrintedParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// MarkTicketPrinted bumps the print counter; printing is orthogonal to the
// ticket state machine and is allowed in any status.
func (q *Queries) MarkTicketPrinted(ctx context.Context, arg MarkTicketPrintedParams) (KitchenTicket, error) {
	return scanTicket(q.db.QueryRow(ctx, markTicketPrinted, arg.ID, arg.RestaurantID))
}

const raiseTicketPriority = `
UPDATE kitchen_tickets
SET priority = $2, updated_at = now()
WHERE id = $1 AND priority < $2
`

type RaiseTicketPriorityParams struct {
	ID       uuid.UUID
	Priority int32
}

// RaiseTicketPriority only ever raises: the WHERE guard keeps priority
// monotonically non-decreasing even under concurrent escalation passes.
func (q *Queries) RaiseTicketPriority(ctx context.Context, arg RaiseTicketPriorityParams) error {
	_, err := q.db.Exec(ctx, raiseTicketPriority, arg.ID, arg.Priority)
	return err
}

const countUnreadySiblingTickets = `
SELECT COUNT(*)
FROM kitchen_tickets
WHERE order_id = $1 AND id <> $2 AND status <> 'READY' AND NOT is_deleted
`

type CountUnreadySiblingTicketsParams struct {
	OrderID   uuid.UUID
	ExcludeID uuid.UUID
}

func (q *Queries) CountUnreadySiblingTickets(ctx context.Context, arg CountUnreadySiblingTicketsParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUnreadySiblingTickets, arg.OrderID, arg.ExcludeID).Scan(&n)
	return n, err
}

const softDeleteTicketsByOrder = `
UPDATE kitchen_tickets
SET is_deleted = true, updated_at = now()
WHERE order_id = $1 AND NOT is_deleted
`

func (q *Queries) SoftDeleteTicketsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, softDeleteTicketsByOrder, orderID)
	return err
}

const ticketItemColumns = `id, ticket_id, order_item_id, item_name, quantity, is_veg, notes, status`

func scanTicketItem(row pgx.Row) (KitchenTicketItem, error) {
	var i KitchenTicketItem
	err := row.Scan(&i.ID, &i.TicketID, &i.OrderItemID, &i.ItemName, &i.Quantity, &i.IsVeg, &i.Notes, &i.Status)
	return i, err
}

const createKitchenTicketItem = `
INSERT INTO kitchen_ticket_items (ticket_id, order_item_id, item_name, quantity, is_veg, notes, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + ticketItemColumns

type CreateKitchenTicketItemParams struct {
	TicketID    uuid.UUID
	OrderItemID uuid.UUID
	ItemName    string
	Quantity    int32
	IsVeg       bool
	Notes       pgtype.Text
	Status      TicketStatus
}

func (q *Queries) CreateKitchenTicketItem(ctx context.Context, arg CreateKitchenTicketItemParams) (KitchenTicketItem, error) {
	row := q.db.QueryRow(ctx, createKitchenTicketItem,
		arg.TicketID, arg.OrderItemID, arg.ItemName, arg.Quantity, arg.IsVeg, arg.Notes, arg.Status,
	)
	return scanTicketItem(row)
}

const listTicketItemsByTicket = `
SELECT ` + ticketItemColumns + `
FROM kitchen_ticket_items
WHERE ticket_id = $1
ORDER BY item_name, id
`

func (q *Queries) ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]KitchenTicketItem, error) {
	rows, err := q.db.Query(ctx, listTicketItemsByTicket, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KitchenTicketItem
	for rows.Next() {
		i, err := scanTicketItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateTicketItemsStatus = `
UPDATE kitchen_ticket_items
SET status = $2
WHERE ticket_id = $1
`

type UpdateTicketItemsStatusParams struct {
	TicketID uuid.UUID
	Status   TicketStatus
}

// UpdateTicketItemsStatus keeps every line in lock-step with the parent
// ticket's status.
func (q *Queries) UpdateTicketItemsStatus(ctx context.Context, arg UpdateTicketItemsStatusParams) error {
	_, err := q.db.Exec(ctx, updateTicketItemsStatus, arg.TicketID, arg.Status)
	return err
}
