package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPENDING   OrderStatus = "PENDING"
	OrderStatusCONFIRMED OrderStatus = "CONFIRMED"
	OrderStatusPREPARING OrderStatus = "PREPARING"
	OrderStatusREADY     OrderStatus = "READY"
	OrderStatusSERVED    OrderStatus = "SERVED"
	OrderStatusCOMPLETED OrderStatus = "COMPLETED"
	OrderStatusCANCELLED OrderStatus = "CANCELLED"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool
}

func (ns *NullOrderStatus) Scan(src interface{}) error {
	if src == nil {
		ns.OrderStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderStatus.Scan(src)
}

func (ns NullOrderStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderStatus), nil
}

type OrderType string

const (
	OrderTypeDINEIN   OrderType = "DINE_IN"
	OrderTypeTAKEAWAY OrderType = "TAKEAWAY"
	OrderTypeDELIVERY OrderType = "DELIVERY"
)

func (e *OrderType) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderType(s)
	case string:
		*e = OrderType(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderType: %T", src)
	}
	return nil
}

type NullOrderType struct {
	OrderType OrderType
	Valid     bool
}

func (ns *NullOrderType) Scan(src interface{}) error {
	if src == nil {
		ns.OrderType, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderType.Scan(src)
}

func (ns NullOrderType) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderType), nil
}

type TicketStatus string

const (
	TicketStatusNOTSENT      TicketStatus = "NOT_SENT"
	TicketStatusSENT         TicketStatus = "SENT"
	TicketStatusACKNOWLEDGED TicketStatus = "ACKNOWLEDGED"
	TicketStatusPREPARING    TicketStatus = "PREPARING"
	TicketStatusREADY        TicketStatus = "READY"
)

func (e *TicketStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = TicketStatus(s)
	case string:
		*e = TicketStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for TicketStatus: %T", src)
	}
	return nil
}

type TableStatus string

const (
	TableStatusAVAILABLE TableStatus = "AVAILABLE"
	TableStatusOCCUPIED  TableStatus = "OCCUPIED"
	TableStatusRESERVED  TableStatus = "RESERVED"
	TableStatusCLEANING  TableStatus = "CLEANING"
)

func (e *TableStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = TableStatus(s)
	case string:
		*e = TableStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for TableStatus: %T", src)
	}
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPENDING       PaymentStatus = "PENDING"
	PaymentStatusPARTIALLYPAID PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusPAID          PaymentStatus = "PAID"
)

func (e *PaymentStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentStatus(s)
	case string:
		*e = PaymentStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentStatus: %T", src)
	}
	return nil
}

type UserRole string

const (
	UserRoleOWNER   UserRole = "OWNER"
	UserRoleMANAGER UserRole = "MANAGER"
	UserRoleCASHIER UserRole = "CASHIER"
	UserRoleKITCHEN UserRole = "KITCHEN"
	UserRoleWAITER  UserRole = "WAITER"
)

func (e *UserRole) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = UserRole(s)
	case string:
		*e = UserRole(s)
	default:
		return fmt.Errorf("unsupported scan type for UserRole: %T", src)
	}
	return nil
}

type Restaurant struct {
	ID        uuid.UUID
	Name      string
	Timezone  string
	CreatedAt time.Time
}

type User struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Pin            pgtype.Text
	Role           UserRole
	CreatedAt      time.Time
}

type MenuItem struct {
	ID              uuid.UUID
	RestaurantID    uuid.UUID
	Name            string
	Price           pgtype.Numeric
	DiscountedPrice pgtype.Numeric
	IsVeg           bool
	IsAvailable     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecipeItem is one ingredient requirement of a menu item.
type RecipeItem struct {
	ID              uuid.UUID
	MenuItemID      uuid.UUID
	StockItemID     uuid.UUID
	QuantityPerUnit pgtype.Numeric
}

type StockItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Unit         string
	Quantity     pgtype.Numeric
	UpdatedAt    time.Time
}

// StockMovement is an append-only audit row; never updated or deleted.
type StockMovement struct {
	ID               uuid.UUID
	RestaurantID     uuid.UUID
	StockItemID      uuid.UUID
	OrderID          pgtype.UUID
	PreviousQuantity pgtype.Numeric
	NewQuantity      pgtype.Numeric
	Change           pgtype.Numeric
	Cause            string
	CreatedAt        time.Time
}

type DiningTable struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Label          string
	Capacity       int32
	Status         TableStatus
	CurrentOrderID pgtype.UUID
	UpdatedAt      time.Time
}

type Order struct {
	ID             uuid.UUID
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
	CancelledAt    pgtype.Timestamptz
	CancelledBy    pgtype.UUID
	CancelReason   pgtype.Text
	IsDeleted      bool
	DeletedAt      pgtype.Timestamptz
	DeleteReason   pgtype.Text
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem carries a frozen snapshot of the menu item at placement/edit time.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	ItemName   string
	UnitPrice  pgtype.Numeric
	Quantity   int32
	IsVeg      bool
	Notes      pgtype.Text
	LineTotal  pgtype.Numeric
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type KitchenTicket struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	OrderID        uuid.UUID
	TicketNumber   string
	TableLabel     pgtype.Text
	Status         TicketStatus
	Priority       int32
	SentAt         pgtype.Timestamptz
	AcknowledgedAt pgtype.Timestamptz
	StartedAt      pgtype.Timestamptz
	CompletedAt    pgtype.Timestamptz
	LastPrintedAt  pgtype.Timestamptz
	PrintCount     int32
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// KitchenTicketItem mirrors one order line for kitchen display.
type KitchenTicketItem struct {
	ID          uuid.UUID
	TicketID    uuid.UUID
	OrderItemID uuid.UUID
	ItemName    string
	Quantity    int32
	IsVeg       bool
	Notes       pgtype.Text
	Status      TicketStatus
}
