package enum

// ── Group A: State machines (CHECK constrained in DB) ──
// The typed versions used by the data layer live in internal/database;
// these plain-string constants are for seeds and request validation.

const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusServed    = "SERVED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	TicketStatusNotSent      = "NOT_SENT"
	TicketStatusSent         = "SENT"
	TicketStatusAcknowledged = "ACKNOWLEDGED"
	TicketStatusPreparing    = "PREPARING"
	TicketStatusReady        = "READY"
)

const (
	PaymentStatusPending       = "PENDING"
	PaymentStatusPartiallyPaid = "PARTIALLY_PAID"
	PaymentStatusPaid          = "PAID"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
	TableStatusReserved  = "RESERVED"
	TableStatusCleaning  = "CLEANING"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
	UserRoleWaiter  = "WAITER"
)

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

// ── Group B: Configurable labels (no DB constraint) ──

// Sequence prefixes for human-readable numbers: prefix + zero-padded counter,
// scoped per restaurant.
const (
	SequencePrefixOrder  = "ORD-"
	SequencePrefixTicket = "KOT-"
)

const (
	MovementCauseOrderDeduction = "ORDER_DEDUCTION"
	MovementCausePurchase       = "PURCHASE"
	MovementCauseAdjustment     = "MANUAL_ADJUSTMENT"
	MovementCauseWastage        = "WASTAGE"
)
