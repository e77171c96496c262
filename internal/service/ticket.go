package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dineops/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Errors returned by the ticket service.
var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrTicketWrongState = errors.New("ticket is not in a state that allows this advance")
)

// Escalation thresholds for tickets still waiting in SENT.
var escalationSteps = []struct {
	after    time.Duration
	priority int32
}{
	{30 * time.Minute, 3},
	{15 * time.Minute, 2},
	{10 * time.Minute, 1},
}

// TicketStore defines the DB methods needed by the ticket service.
// Satisfied by *database.Queries (and its WithTx variant).
type TicketStore interface {
	GetTicket(ctx context.Context, arg database.GetTicketParams) (database.KitchenTicket, error)
	GetTicketForUpdate(ctx context.Context, arg database.GetTicketForUpdateParams) (database.KitchenTicket, error)
	ListActiveTickets(ctx context.Context, arg database.ListActiveTicketsParams) ([]database.KitchenTicket, error)
	ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]database.KitchenTicketItem, error)
	AcknowledgeTicket(ctx context.Context, arg database.AcknowledgeTicketParams) (database.KitchenTicket, error)
	StartTicket(ctx context.Context, arg database.StartTicketParams) (database.KitchenTicket, error)
	MarkTicketReady(ctx context.Context, arg database.MarkTicketReadyParams) (database.KitchenTicket, error)
	MarkTicketPrinted(ctx context.Context, arg database.MarkTicketPrintedParams) (database.KitchenTicket, error)
	RaiseTicketPriority(ctx context.Context, arg database.RaiseTicketPriorityParams) error
	UpdateTicketItemsStatus(ctx context.Context, arg database.UpdateTicketItemsStatusParams) error
	CountUnreadySiblingTickets(ctx context.Context, arg database.CountUnreadySiblingTicketsParams) (int64, error)

	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)

	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListRecipeItemsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeItem, error)
	GetStockItemForUpdate(ctx context.Context, arg database.GetStockItemForUpdateParams) (database.StockItem, error)
	UpdateStockQuantity(ctx context.Context, arg database.UpdateStockQuantityParams) (database.StockItem, error)
	CreateStockMovement(ctx context.Context, arg database.CreateStockMovementParams) (database.StockMovement, error)
}

// NewTicketStore creates a TicketStore from a DBTX (pool or tx).
type NewTicketStore func(db database.DBTX) TicketStore

// TicketService handles kitchen ticket progression and its coupling back
// to the order state machine.
type TicketService struct {
	store    TicketStore
	pool     TxBeginner
	newStore NewTicketStore
	now      func() time.Time
	loc      *time.Location
}

// NewTicketService creates a new TicketService. loc is the restaurant
// chain's display timezone, used to bound "today" for the active list.
func NewTicketService(store TicketStore, pool TxBeginner, newStore NewTicketStore, loc *time.Location) *TicketService {
	return &TicketService{
		store:    store,
		pool:     pool,
		newStore: newStore,
		now:      time.Now,
		loc:      loc,
	}
}

// Acknowledge confirms the kitchen has seen the ticket. Only valid from SENT.
func (s *TicketService) Acknowledge(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	ticket, err := store.AcknowledgeTicket(ctx, database.AcknowledgeTicketParams{
		ID:           ticketID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		return nil, s.adviseError(ctx, store, err, restaurantID, ticketID)
	}
	if err := store.UpdateTicketItemsStatus(ctx, database.UpdateTicketItemsStatusParams{
		TicketID: ticket.ID,
		Status:   database.TicketStatusACKNOWLEDGED,
	}); err != nil {
		return nil, fmt.Errorf("update ticket items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &ticket, nil
}

// StartPreparing moves the ticket to PREPARING (from SENT or ACKNOWLEDGED)
// and pulls the parent order into PREPARING as well. If the order was still
// PENDING, entering PREPARING triggers the stock deduction pass.
func (s *TicketService) StartPreparing(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	ticket, err := store.StartTicket(ctx, database.StartTicketParams{
		ID:           ticketID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		return nil, s.adviseError(ctx, store, err, restaurantID, ticketID)
	}
	if err := store.UpdateTicketItemsStatus(ctx, database.UpdateTicketItemsStatusParams{
		TicketID: ticket.ID,
		Status:   database.TicketStatusPREPARING,
	}); err != nil {
		return nil, fmt.Errorf("update ticket items: %w", err)
	}

	order, err := store.GetOrderForUpdate(ctx, database.GetOrderForUpdateParams{
		ID:           ticket.OrderID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		// The parent order can vanish mid-flight if it is deleted
		// concurrently; the ticket is gone with it.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	// No-op when the order is already at or past PREPARING.
	if order.Status == database.OrderStatusPENDING || order.Status == database.OrderStatusCONFIRMED {
		updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:           order.ID,
			RestaurantID: restaurantID,
			Status:       database.OrderStatusPREPARING,
			FromStatus:   order.Status,
		})
		if err != nil {
			return nil, fmt.Errorf("advance order: %w", err)
		}
		if order.Status == database.OrderStatusPENDING {
			if err := deductOrderStock(ctx, store, updated); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &ticket, nil
}

// MarkReady completes the ticket (from PREPARING). When every other ticket
// on the order is already READY, the order advances from PREPARING to READY.
func (s *TicketService) MarkReady(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	ticket, err := store.MarkTicketReady(ctx, database.MarkTicketReadyParams{
		ID:           ticketID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		return nil, s.adviseError(ctx, store, err, restaurantID, ticketID)
	}
	if err := store.UpdateTicketItemsStatus(ctx, database.UpdateTicketItemsStatusParams{
		TicketID: ticket.ID,
		Status:   database.TicketStatusREADY,
	}); err != nil {
		return nil, fmt.Errorf("update ticket items: %w", err)
	}

	pending, err := store.CountUnreadySiblingTickets(ctx, database.CountUnreadySiblingTicketsParams{
		OrderID:   ticket.OrderID,
		ExcludeID: ticket.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("count sibling tickets: %w", err)
	}
	if pending == 0 {
		order, err := store.GetOrderForUpdate(ctx, database.GetOrderForUpdateParams{
			ID:           ticket.OrderID,
			RestaurantID: restaurantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTicketNotFound
			}
			return nil, fmt.Errorf("get order: %w", err)
		}
		if order.Status == database.OrderStatusPREPARING {
			if _, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
				ID:           order.ID,
				RestaurantID: restaurantID,
				Status:       database.OrderStatusREADY,
				FromStatus:   database.OrderStatusPREPARING,
			}); err != nil {
				return nil, fmt.Errorf("advance order: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &ticket, nil
}

// MarkPrinted bumps the print counter. Valid in any state.
func (s *TicketService) MarkPrinted(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error) {
	ticket, err := s.store.MarkTicketPrinted(ctx, database.MarkTicketPrintedParams{
		ID:           ticketID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("mark ticket printed: %w", err)
	}
	return &ticket, nil
}

// GetTicket returns a ticket with its lines.
func (s *TicketService) GetTicket(ctx context.Context, restaurantID, ticketID uuid.UUID) (*TicketResult, error) {
	ticket, err := s.store.GetTicket(ctx, database.GetTicketParams{ID: ticketID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	items, err := s.store.ListTicketItemsByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("list ticket items: %w", err)
	}
	return &TicketResult{Ticket: ticket, Items: items}, nil
}

// ListActive returns today's open tickets for the kitchen display,
// escalating the priority of aging SENT tickets first. Escalation only
// raises and each raise is persisted, so repeated fetches are idempotent.
func (s *TicketService) ListActive(ctx context.Context, restaurantID uuid.UUID) ([]database.KitchenTicket, error) {
	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	tickets, err := s.store.ListActiveTickets(ctx, database.ListActiveTicketsParams{
		RestaurantID: restaurantID,
		DayStart:     timestamptz(dayStart),
		DayEnd:       timestamptz(dayEnd),
	})
	if err != nil {
		return nil, fmt.Errorf("list active tickets: %w", err)
	}

	for i := range tickets {
		t := &tickets[i]
		if t.Status != database.TicketStatusSENT || !t.SentAt.Valid {
			continue
		}
		target := escalatedPriority(now.Sub(t.SentAt.Time))
		if target <= t.Priority {
			continue
		}
		if err := s.store.RaiseTicketPriority(ctx, database.RaiseTicketPriorityParams{
			ID:       t.ID,
			Priority: target,
		}); err != nil {
			return nil, fmt.Errorf("raise ticket priority: %w", err)
		}
		t.Priority = target
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		if tickets[i].Priority != tickets[j].Priority {
			return tickets[i].Priority > tickets[j].Priority
		}
		si, sj := tickets[i].SentAt, tickets[j].SentAt
		if si.Valid != sj.Valid {
			return si.Valid
		}
		return si.Time.Before(sj.Time)
	})
	return tickets, nil
}

// escalatedPriority maps waiting time to the minimum priority a SENT
// ticket should carry.
func escalatedPriority(waited time.Duration) int32 {
	for _, step := range escalationSteps {
		if waited > step.after {
			return step.priority
		}
	}
	return 0
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// adviseError turns an ErrNoRows from a guarded ticket update into the
// right client-facing error: the ticket is either missing or in the wrong
// state for the requested advance.
func (s *TicketService) adviseError(ctx context.Context, store TicketStore, err error, restaurantID, ticketID uuid.UUID) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("advance ticket: %w", err)
	}
	ticket, getErr := store.GetTicket(ctx, database.GetTicketParams{ID: ticketID, RestaurantID: restaurantID})
	if getErr != nil {
		return ErrTicketNotFound
	}
	return fmt.Errorf("%w: currently %s", ErrTicketWrongState, ticket.Status)
}
