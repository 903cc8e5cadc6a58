package domain

import (
	"time"
)

// Event represents a bookable event in the catalog. Price is in cents.
type Event struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Date              time.Time `json:"date"`
	Venue             string    `json:"venue"`
	Quantity          int       `json:"quantity"`
	RemainingQuantity int       `json:"remainingQuantity"`
	Price             int64     `json:"price"`
	Category          string    `json:"category"`
	Image             string    `json:"image,omitempty"`
	IsOpen            bool      `json:"isOpen"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// EventBooking is a booking summary attached to an event in admin listings.
type EventBooking struct {
	ID          string       `json:"id"`
	Quantity    int          `json:"quantity"`
	BookingDate time.Time    `json:"bookingDate"`
	User        BookingOwner `json:"user"`
}

// BookingOwner identifies the user behind a booking summary.
type BookingOwner struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// EventDetail is an event with its booking summaries, as returned by the
// admin catalog endpoints.
type EventDetail struct {
	Event
	Bookings []EventBooking `json:"bookings"`
}

// UpcomingEvent is a catalog event annotated with whether the viewing user
// has already booked it. Anonymous viewers always see IsBooked false.
type UpcomingEvent struct {
	Event
	IsBooked bool `json:"isBooked"`
}
