package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
)

// TicketHandler renders printable plain-text tickets and cancellation
// receipts. Tickets exist only for CONFIRMED bookings, receipts only
// for CANCELLED ones.
type TicketHandler struct {
	Bookings *service.BookingService
}

func NewTicketHandler(s *service.BookingService) *TicketHandler {
	return &TicketHandler{Bookings: s}
}

// Ticket handles GET /v1/bookings/:reference/ticket.
func (h *TicketHandler) Ticket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref, err := bookingRef(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking reference"})
	}
	b, err := h.Bookings.GetForUser(c.Request().Context(), userID, ref)
	if err != nil {
		return bookingError(c, err)
	}
	if b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket available for confirmed bookings only"})
	}
	return c.String(http.StatusOK, renderTicket(b))
}

// Receipt handles GET /v1/bookings/:reference/receipt.
func (h *TicketHandler) Receipt(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref, err := bookingRef(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking reference"})
	}
	b, err := h.Bookings.GetForUser(c.Request().Context(), userID, ref)
	if err != nil {
		return bookingError(c, err)
	}
	if b.Status != model.BookingCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "receipt available for cancelled bookings only"})
	}
	return c.String(http.StatusOK, renderReceipt(b))
}

const ticketRule = "========================================"

// renderTicket formats a boarding document. The verification line is a
// machine-readable payload gate agents can scan or type in.
func renderTicket(b *model.Booking) string {
	t := b.TravelOption
	var sb strings.Builder
	sb.WriteString(ticketRule + "\n")
	sb.WriteString("            TRAVEL TICKET\n")
	sb.WriteString(ticketRule + "\n")
	fmt.Fprintf(&sb, "Reference:  %s\n", b.Reference)
	fmt.Fprintf(&sb, "%-11s %s\n", string(t.Kind)+":", t.TravelID)
	fmt.Fprintf(&sb, "Route:      %s -> %s\n", t.Source, t.Destination)
	fmt.Fprintf(&sb, "Departure:  %s\n", t.DepartureAt.UTC().Format("Mon, 02 Jan 2006 15:04 MST"))
	fmt.Fprintf(&sb, "Seats:      %d\n", b.Seats)
	fmt.Fprintf(&sb, "Total:      $%s\n", b.TotalPrice.StringFixed(2))
	fmt.Fprintf(&sb, "Booked:     %s\n", b.BookedAt.UTC().Format("02 Jan 2006 15:04 MST"))
	sb.WriteString(ticketRule + "\n")
	fmt.Fprintf(&sb, "Verify: %s\n", ticketPayload(b))
	sb.WriteString(ticketRule + "\n")
	return sb.String()
}

func renderReceipt(b *model.Booking) string {
	t := b.TravelOption
	refund := "0.00"
	if b.RefundAmount != nil {
		refund = b.RefundAmount.StringFixed(2)
	}
	var sb strings.Builder
	sb.WriteString(ticketRule + "\n")
	sb.WriteString("        CANCELLATION RECEIPT\n")
	sb.WriteString(ticketRule + "\n")
	fmt.Fprintf(&sb, "Reference:  %s\n", b.Reference)
	fmt.Fprintf(&sb, "Route:      %s -> %s (%s)\n", t.Source, t.Destination, t.TravelID)
	fmt.Fprintf(&sb, "Seats:      %d\n", b.Seats)
	fmt.Fprintf(&sb, "Paid:       $%s\n", b.TotalPrice.StringFixed(2))
	fmt.Fprintf(&sb, "Refund:     $%s\n", refund)
	if b.CancelledAt != nil {
		fmt.Fprintf(&sb, "Cancelled:  %s\n", b.CancelledAt.UTC().Format("02 Jan 2006 15:04 MST"))
	}
	if b.CancellationReason != "" {
		fmt.Fprintf(&sb, "Reason:     %s\n", b.CancellationReason)
	}
	sb.WriteString("Refunds are processed within 5-7 business days.\n")
	sb.WriteString(ticketRule + "\n")
	return sb.String()
}

// ticketPayload is the pipe-delimited string encoded into scannable
// codes by client apps.
func ticketPayload(b *model.Booking) string {
	t := b.TravelOption
	return strings.Join([]string{
		"TB1",
		b.Reference.String(),
		t.TravelID,
		string(t.Kind),
		t.Source,
		t.Destination,
		t.DepartureAt.UTC().Format(time.RFC3339),
		fmt.Sprintf("%d", b.Seats),
	}, "|")
}
