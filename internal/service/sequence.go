package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// FormatSequence renders a per-restaurant document number such as ORD-0042
// or KOT-0007. The counter is zero padded to four digits but keeps growing
// past 9999 without truncation.
func FormatSequence(prefix string, n int32) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// isSequenceConflict reports whether err is a unique violation on one of
// the per-restaurant document number constraints. Two transactions can read
// the same MAX suffix concurrently; the loser retries with a fresh number.
func isSequenceConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return pgErr.ConstraintName == "orders_restaurant_id_order_number_key" ||
		pgErr.ConstraintName == "kitchen_tickets_restaurant_id_ticket_number_key"
}
