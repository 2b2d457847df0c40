package handler

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/travel-booking/internal/model"
)

func ticketBooking() *model.Booking {
	refund := decimal.RequireFromString("53.97")
	cancelledAt := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	return &model.Booking{
		Reference:          uuid.MustParse("7e57ab1e-0000-4000-8000-000000000001"),
		UserID:             7,
		Seats:              3,
		TotalPrice:         decimal.RequireFromString("59.97"),
		Status:             model.BookingConfirmed,
		BookedAt:           time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		CancelledAt:        &cancelledAt,
		CancellationReason: "User requested cancellation",
		RefundAmount:       &refund,
		TravelOption: &model.TravelOption{
			TravelID:    "AA1234",
			Kind:        model.KindFlight,
			Source:      "Boston",
			Destination: "Denver",
			DepartureAt: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC),
			Price:       decimal.RequireFromString("19.99"),
		},
	}
}

func TestRenderTicket(t *testing.T) {
	out := renderTicket(ticketBooking())

	assert.Contains(t, out, "TRAVEL TICKET")
	assert.Contains(t, out, "7e57ab1e-0000-4000-8000-000000000001")
	assert.Contains(t, out, "Boston -> Denver")
	assert.Contains(t, out, "AA1234")
	assert.Contains(t, out, "Seats:      3")
	assert.Contains(t, out, "$59.97")
	assert.Contains(t, out, "Verify: ")
}

func TestRenderReceipt(t *testing.T) {
	b := ticketBooking()
	b.Status = model.BookingCancelled
	out := renderReceipt(b)

	assert.Contains(t, out, "CANCELLATION RECEIPT")
	assert.Contains(t, out, "Refund:     $53.97")
	assert.Contains(t, out, "Paid:       $59.97")
	assert.Contains(t, out, "User requested cancellation")
}

func TestTicketPayload(t *testing.T) {
	got := ticketPayload(ticketBooking())
	parts := strings.Split(got, "|")

	assert.Equal(t, 8, len(parts))
	assert.Equal(t, "TB1", parts[0])
	assert.Equal(t, "7e57ab1e-0000-4000-8000-000000000001", parts[1])
	assert.Equal(t, "AA1234", parts[2])
	assert.Equal(t, "FLIGHT", parts[3])
	assert.Equal(t, "2026-09-01T14:30:00Z", parts[6])
	assert.Equal(t, "3", parts[7])
}
