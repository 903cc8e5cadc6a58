package domain

import (
	"time"
)

// MaxTicketsPerBooking caps the quantity of a single booking request.
const MaxTicketsPerBooking = 5

// Booking represents a confirmed ticket booking.
type Booking struct {
	ID          string    `json:"bookingId"`
	UserID      string    `json:"-"`
	EventID     string    `json:"-"`
	Quantity    int       `json:"quantity"`
	BookingDate time.Time `json:"bookingDate"`
}

// BookingConfirmation is returned after a successful booking. It carries the
// new booking, the event it belongs to, and the user's prior bookings for the
// same event with aggregate totals.
type BookingConfirmation struct {
	CurrentBooking   Booking   `json:"currentBooking"`
	Event            Event     `json:"event"`
	PreviousBookings []Booking `json:"previousBookings"`
	TotalBookings    int       `json:"totalBookings"`
	TotalTickets     int       `json:"totalTickets"`
}

// UserBooking is a booking joined with its event, as read back for the
// my-bookings listing.
type UserBooking struct {
	Booking
	Event Event `json:"event"`
}

// BookingGroup aggregates a user's bookings for one event, newest first.
type BookingGroup struct {
	Event          Event     `json:"event"`
	BookingHistory []Booking `json:"bookingHistory"`
	TotalTickets   int       `json:"totalTickets"`
}

// LatestBookingDate returns the date of the most recent booking in the group.
func (g *BookingGroup) LatestBookingDate() time.Time {
	if len(g.BookingHistory) == 0 {
		return time.Time{}
	}
	return g.BookingHistory[0].BookingDate
}
