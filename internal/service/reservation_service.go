package service

import (
	"context"
	"log/slog"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/apperrors"
	"github.com/tableside/tableside/internal/domain/reservation"
)

// ReservationGateway is the remote reservation API surface.
type ReservationGateway interface {
	ListReservations(ctx context.Context) ([]reservation.Reservation, error)
	CreateReservation(ctx context.Context, req gateway.CreateReservationRequest) (*reservation.Reservation, error)
	ConfirmReservation(ctx context.Context, id int64) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id int64) (*reservation.Reservation, error)
}

// ReservationService displays reservations and triggers the two
// server-owned transitions. It holds no reconciliation state: the
// status workflow belongs to the server and is consumed read-only.
type ReservationService struct {
	gw      ReservationGateway
	session SessionInfo
	logger  *slog.Logger
}

// NewReservationService creates the reservation service.
func NewReservationService(gw ReservationGateway, sess SessionInfo, logger *slog.Logger) *ReservationService {
	return &ReservationService{gw: gw, session: sess, logger: logger}
}

// List returns the current user's reservations.
func (s *ReservationService) List(ctx context.Context) ([]reservation.Reservation, error) {
	if !s.session.IsAuthenticated() {
		return nil, apperrors.ErrNotPermitted
	}
	return s.gw.ListReservations(ctx)
}

// Create books a table.
func (s *ReservationService) Create(ctx context.Context, req gateway.CreateReservationRequest) (*reservation.Reservation, error) {
	if !s.session.IsAuthenticated() {
		return nil, apperrors.ErrNotPermitted
	}
	return s.gw.CreateReservation(ctx, req)
}

// Confirm triggers the unconfirmed -> confirmed transition. The check
// against the current status is display-side only; the server is the
// authority and revalidates.
func (s *ReservationService) Confirm(ctx context.Context, r reservation.Reservation) (*reservation.Reservation, error) {
	if !s.session.IsAuthenticated() {
		return nil, apperrors.ErrNotPermitted
	}
	if !r.Status.CanConfirm() {
		return nil, apperrors.ErrNotPermitted
	}
	return s.gw.ConfirmReservation(ctx, r.ID)
}

// Cancel triggers the transition to cancelled.
func (s *ReservationService) Cancel(ctx context.Context, r reservation.Reservation) (*reservation.Reservation, error) {
	if !s.session.IsAuthenticated() {
		return nil, apperrors.ErrNotPermitted
	}
	if !r.Status.CanCancel() {
		return nil, apperrors.ErrNotPermitted
	}
	return s.gw.CancelReservation(ctx, r.ID)
}
