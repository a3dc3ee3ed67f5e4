package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tableside/tableside/internal/domain/reservation"
)

// CreateReservationRequest is the payload for POST /reservations.
type CreateReservationRequest struct {
	TableID  int64     `json:"table_id" validate:"required"`
	Guests   int       `json:"guests" validate:"required,min=1,max=20"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Comment  string    `json:"comment,omitempty" validate:"max=500"`
}

// ListReservations returns the current user's reservations.
func (c *Client) ListReservations(ctx context.Context) ([]reservation.Reservation, error) {
	var result []reservation.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateReservation books a table. The created record comes back in the
// server-owned unconfirmed state.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*reservation.Reservation, error) {
	var result reservation.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmReservation triggers the unconfirmed -> confirmed transition.
// The status machine itself is server-owned.
func (c *Client) ConfirmReservation(ctx context.Context, id int64) (*reservation.Reservation, error) {
	var result reservation.Reservation
	path := fmt.Sprintf("/reservations/%d/confirm", id)
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelReservation triggers the transition to cancelled.
func (c *Client) CancelReservation(ctx context.Context, id int64) (*reservation.Reservation, error) {
	var result reservation.Reservation
	path := fmt.Sprintf("/reservations/%d/cancel", id)
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
