package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/service"
	"github.com/dineops/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TicketServicer defines the service methods needed by ticket handlers.
// Satisfied by *service.TicketService; narrow interface for testability.
type TicketServicer interface {
	ListActive(ctx context.Context, restaurantID uuid.UUID) ([]database.KitchenTicket, error)
	GetTicket(ctx context.Context, restaurantID, ticketID uuid.UUID) (*service.TicketResult, error)
	Acknowledge(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error)
	StartPreparing(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error)
	MarkReady(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error)
	MarkPrinted(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error)
}

// TicketHandler handles kitchen ticket endpoints.
type TicketHandler struct {
	svc    TicketServicer
	notify Notifier
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(svc TicketServicer, notify Notifier) *TicketHandler {
	return &TicketHandler{svc: svc, notify: notify}
}

// RegisterRoutes registers ticket endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter: /restaurants/{rid}/tickets
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListActive)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/acknowledge", h.Acknowledge)
	r.Post("/{id}/start", h.Start)
	r.Post("/{id}/ready", h.Ready)
	r.Post("/{id}/print", h.Print)
}

// --- Response types ---

type ticketResponse struct {
	ID             uuid.UUID            `json:"id"`
	RestaurantID   uuid.UUID            `json:"restaurant_id"`
	OrderID        uuid.UUID            `json:"order_id"`
	TicketNumber   string               `json:"ticket_number"`
	TableLabel     *string              `json:"table_label"`
	Status         string               `json:"status"`
	Priority       int32                `json:"priority"`
	SentAt         *time.Time           `json:"sent_at"`
	AcknowledgedAt *time.Time           `json:"acknowledged_at"`
	StartedAt      *time.Time           `json:"started_at"`
	CompletedAt    *time.Time           `json:"completed_at"`
	LastPrintedAt  *time.Time           `json:"last_printed_at"`
	PrintCount     int32                `json:"print_count"`
	Items          []ticketItemResponse `json:"items,omitempty"`
}

type ticketItemResponse struct {
	ID       uuid.UUID `json:"id"`
	ItemName string    `json:"item_name"`
	Quantity int32     `json:"quantity"`
	IsVeg    bool      `json:"is_veg"`
	Notes    *string   `json:"notes"`
	Status   string    `json:"status"`
}

type ticketListResponse struct {
	Tickets []ticketResponse `json:"tickets"`
}

// --- Handlers ---

// ListActive handles GET /restaurants/{rid}/tickets.
// Returns today's open tickets in kitchen display order.
func (h *TicketHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	tickets, err := h.svc.ListActive(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list active tickets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = dbTicketToResponse(t, nil)
	}
	writeJSON(w, http.StatusOK, ticketListResponse{Tickets: resp})
}

// Get handles GET /restaurants/{rid}/tickets/{id}.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, ticketID, ok := h.parseTicketPath(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetTicket(r.Context(), restaurantID, ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ticket not found"})
			return
		}
		log.Printf("ERROR: get ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbTicketToResponse(result.Ticket, result.Items))
}

// Acknowledge handles POST /restaurants/{rid}/tickets/{id}/acknowledge.
func (h *TicketHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.svc.Acknowledge, ws.EventTicketAcknowledged)
}

// Start handles POST /restaurants/{rid}/tickets/{id}/start.
func (h *TicketHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.svc.StartPreparing, ws.EventTicketPreparing)
}

// Ready handles POST /restaurants/{rid}/tickets/{id}/ready.
func (h *TicketHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.svc.MarkReady, ws.EventTicketReady)
}

// Print handles POST /restaurants/{rid}/tickets/{id}/print.
// Bumps the print counter; valid in any ticket state, no broadcast.
func (h *TicketHandler) Print(w http.ResponseWriter, r *http.Request) {
	restaurantID, ticketID, ok := h.parseTicketPath(w, r)
	if !ok {
		return
	}

	ticket, err := h.svc.MarkPrinted(r.Context(), restaurantID, ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ticket not found"})
			return
		}
		log.Printf("ERROR: print ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbTicketToResponse(*ticket, nil))
}

// --- Helpers ---

// advance runs one ticket state advance and maps its errors uniformly.
func (h *TicketHandler) advance(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, restaurantID, ticketID uuid.UUID) (*database.KitchenTicket, error),
	eventType string,
) {
	restaurantID, ticketID, ok := h.parseTicketPath(w, r)
	if !ok {
		return
	}

	ticket, err := fn(r.Context(), restaurantID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ticket not found"})
		case errors.Is(err, service.ErrTicketWrongState):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrTransitionConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
		default:
			log.Printf("ERROR: advance ticket: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := dbTicketToResponse(*ticket, nil)
	h.broadcast(restaurantID, eventType, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *TicketHandler) parseTicketPath(w http.ResponseWriter, r *http.Request) (restaurantID, ticketID uuid.UUID, ok bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return uuid.Nil, uuid.Nil, false
	}
	ticketID, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return restaurantID, ticketID, true
}

func (h *TicketHandler) broadcast(restaurantID uuid.UUID, eventType string, payload interface{}) {
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

func dbTicketToResponse(t database.KitchenTicket, items []database.KitchenTicketItem) ticketResponse {
	resp := ticketResponse{
		ID:           t.ID,
		RestaurantID: t.RestaurantID,
		OrderID:      t.OrderID,
		TicketNumber: t.TicketNumber,
		Status:       string(t.Status),
		Priority:     t.Priority,
		PrintCount:   t.PrintCount,
	}
	if t.TableLabel.Valid {
		resp.TableLabel = &t.TableLabel.String
	}
	if t.SentAt.Valid {
		resp.SentAt = &t.SentAt.Time
	}
	if t.AcknowledgedAt.Valid {
		resp.AcknowledgedAt = &t.AcknowledgedAt.Time
	}
	if t.StartedAt.Valid {
		resp.StartedAt = &t.StartedAt.Time
	}
	if t.CompletedAt.Valid {
		resp.CompletedAt = &t.CompletedAt.Time
	}
	if t.LastPrintedAt.Valid {
		resp.LastPrintedAt = &t.LastPrintedAt.Time
	}

	if len(items) > 0 {
		resp.Items = make([]ticketItemResponse, len(items))
		for i, item := range items {
			resp.Items[i] = ticketItemResponse{
				ID:       item.ID,
				ItemName: item.ItemName,
				Quantity: item.Quantity,
				IsVeg:    item.IsVeg,
				Status:   string(item.Status),
			}
			if item.Notes.Valid {
				resp.Items[i].Notes = &item.Notes.String
			}
		}
	}
	return resp
}
