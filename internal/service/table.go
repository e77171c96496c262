package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dineops/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TableStore defines the DB methods needed by the table service.
type TableStore interface {
	GetTable(ctx context.Context, arg database.GetTableParams) (database.DiningTable, error)
	ListTables(ctx context.Context, restaurantID uuid.UUID) ([]database.DiningTable, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.DiningTable, error)
	FreeTable(ctx context.Context, arg database.FreeTableParams) (database.DiningTable, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
}

// TableService exposes direct table operations outside the order flow,
// such as a host seating a party against an existing order.
type TableService struct {
	store TableStore
}

// NewTableService creates a new TableService.
func NewTableService(store TableStore) *TableService {
	return &TableService{store: store}
}

// List returns all tables of a restaurant.
func (s *TableService) List(ctx context.Context, restaurantID uuid.UUID) ([]database.DiningTable, error) {
	return s.store.ListTables(ctx, restaurantID)
}

// Assign binds a table to an existing non-terminal order. Fails if the
// table is occupied by a different order.
func (s *TableService) Assign(ctx context.Context, restaurantID, tableID, orderID uuid.UUID) (*database.DiningTable, error) {
	order, err := s.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if isTerminal(order.Status) {
		return nil, ErrOrderTerminal
	}

	if _, err := s.store.GetTable(ctx, database.GetTableParams{ID: tableID, RestaurantID: restaurantID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	table, err := s.store.OccupyTable(ctx, database.OccupyTableParams{
		ID:           tableID,
		RestaurantID: restaurantID,
		OrderID:      orderID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableOccupied
		}
		return nil, fmt.Errorf("occupy table: %w", err)
	}
	return &table, nil
}

// Free releases a table unconditionally and clears its order back-reference.
// Freeing an already available table is a no-op success.
func (s *TableService) Free(ctx context.Context, restaurantID, tableID uuid.UUID) (*database.DiningTable, error) {
	table, err := s.store.FreeTable(ctx, database.FreeTableParams{ID: tableID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("free table: %w", err)
	}
	return &table, nil
}
