package entity

import (
	"time"
)

const TicketStatusNew = "new"

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Ticket struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      int64     `json:"user_id" firestore:"userId" validate:"required"`
	Description string    `json:"description" firestore:"description" validate:"required"`
	Location    *GeoPoint `json:"location" firestore:"-" validate:"required"`
	Category    Category  `json:"category" firestore:"category" validate:"required,category"`
	Status      string    `json:"status" firestore:"status" validate:"required"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt" validate:"required"`
}

// NewTicket starts an empty ticket for the given submitter.
func NewTicket(userID int64, now time.Time) Ticket {
	return Ticket{
		UserID:    userID,
		Status:    TicketStatusNew,
		CreatedAt: now,
	}
}

// Submittable reports whether the ticket carries a description and a
// location. Category is not part of it: it is chosen at submission.
func (t Ticket) Submittable() bool {
	return t.Description != "" && t.Location != nil
}

// MissingFields names what still has to be provided before submission.
func (t Ticket) MissingFields() []string {
	var missing []string
	if t.Description == "" {
		missing = append(missing, "description")
	}
	if t.Location == nil {
		missing = append(missing, "location")
	}
	return missing
}

// MediaPrefix is the object storage folder holding the ticket's images.
func MediaPrefix(ticketID string) string {
	return "tickets/" + ticketID + "/images/"
}
