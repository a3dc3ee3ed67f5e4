// Package reservation contains the read-only reservation model. The
// status workflow is owned server-side; the client only displays it and
// triggers the confirm/cancel transitions.
package reservation

import "time"

// Status is a reservation lifecycle state pushed from the server.
type Status string

const (
	StatusUnconfirmed Status = "unconfirmed"
	StatusConfirmed   Status = "confirmed"
	StatusStarted     Status = "started"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// IsValid returns true if the status is part of the known workflow.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnconfirmed, StatusConfirmed, StatusStarted, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanConfirm reports whether the confirm action should be offered.
// Display-side check only; the server revalidates.
func (s Status) CanConfirm() bool {
	return s == StatusUnconfirmed
}

// CanCancel reports whether the cancel action should be offered.
func (s Status) CanCancel() bool {
	return s == StatusUnconfirmed || s == StatusConfirmed
}

// Label returns the human-readable display label.
func (s Status) Label() string {
	switch s {
	case StatusUnconfirmed:
		return "Не подтверждено"
	case StatusConfirmed:
		return "Подтверждено"
	case StatusStarted:
		return "Началось"
	case StatusCompleted:
		return "Завершено"
	case StatusCancelled:
		return "Отменено"
	default:
		return string(s)
	}
}

// Reservation is a table reservation record as returned by the gateway.
type Reservation struct {
	ID         int64     `json:"reservation_id"`
	UserID     int64     `json:"user_id"`
	TableID    int64     `json:"table_id"`
	Guests     int       `json:"guests"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     Status    `json:"status"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}
