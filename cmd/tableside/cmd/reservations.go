package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/domain/reservation"
)

var reservationsCmd = &cobra.Command{
	Use:     "reservations",
	Aliases: []string{"res"},
	Short:   "Show and manage table reservations",
	RunE:    runReservationsList,
}

var (
	resTableID int64
	resGuests  int
	resAt      string
	resComment string
)

var reservationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Reserve a table",
	RunE:  runReservationsCreate,
}

var reservationsConfirmCmd = &cobra.Command{
	Use:   "confirm <reservation-id>",
	Short: "Confirm a pending reservation",
	Args:  cobra.ExactArgs(1),
	RunE:  runReservationsConfirm,
}

var reservationsCancelCmd = &cobra.Command{
	Use:   "cancel <reservation-id>",
	Short: "Cancel a reservation",
	Args:  cobra.ExactArgs(1),
	RunE:  runReservationsCancel,
}

func init() {
	reservationsCreateCmd.Flags().Int64Var(&resTableID, "table", 0, "table id")
	reservationsCreateCmd.Flags().IntVar(&resGuests, "guests", 2, "number of guests")
	reservationsCreateCmd.Flags().StringVar(&resAt, "at", "", "start time, e.g. 2026-09-05T19:00")
	reservationsCreateCmd.Flags().StringVar(&resComment, "comment", "", "comment for the restaurant")
	_ = reservationsCreateCmd.MarkFlagRequired("table")
	_ = reservationsCreateCmd.MarkFlagRequired("at")

	reservationsCmd.AddCommand(reservationsCreateCmd)
	reservationsCmd.AddCommand(reservationsConfirmCmd)
	reservationsCmd.AddCommand(reservationsCancelCmd)
	rootCmd.AddCommand(reservationsCmd)
}

// reservationsApp hydrates the session and checks authentication.
func reservationsApp(cmd *cobra.Command) (*app, error) {
	a, err := hydratedApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a, nil
}

func runReservationsList(cmd *cobra.Command, args []string) error {
	a, err := reservationsApp(cmd)
	if err != nil {
		return err
	}

	list, err := a.reservations.List(cmd.Context())
	if err != nil {
		return a.userError(err)
	}
	if len(list) == 0 {
		fmt.Println("Бронирований нет")
		return nil
	}

	for _, r := range list {
		fmt.Printf("%6d  стол %d, %d гостей, %s  [%s]",
			r.ID, r.TableID, r.Guests,
			r.StartsAt.Local().Format("02.01.2006 15:04"),
			r.Status.Label())
		if r.Comment != "" {
			fmt.Printf("  %s", r.Comment)
		}
		fmt.Println()
	}
	return nil
}

func runReservationsCreate(cmd *cobra.Command, args []string) error {
	a, err := reservationsApp(cmd)
	if err != nil {
		return err
	}

	startsAt, err := parseStartTime(resAt)
	if err != nil {
		return err
	}

	r, err := a.reservations.Create(cmd.Context(), gateway.CreateReservationRequest{
		TableID:  resTableID,
		Guests:   resGuests,
		StartsAt: startsAt,
		Comment:  resComment,
	})
	if err != nil {
		return a.userError(err)
	}

	fmt.Printf("Бронирование %d создано: стол %d на %s [%s]\n",
		r.ID, r.TableID, r.StartsAt.Local().Format("02.01.2006 15:04"), r.Status.Label())
	return nil
}

func runReservationsConfirm(cmd *cobra.Command, args []string) error {
	a, err := reservationsApp(cmd)
	if err != nil {
		return err
	}

	r, err := findReservation(cmd, a, args[0])
	if err != nil {
		return err
	}
	confirmed, err := a.reservations.Confirm(cmd.Context(), *r)
	if err != nil {
		return a.userError(err)
	}

	fmt.Printf("Бронирование %d: %s\n", confirmed.ID, confirmed.Status.Label())
	return nil
}

func runReservationsCancel(cmd *cobra.Command, args []string) error {
	a, err := reservationsApp(cmd)
	if err != nil {
		return err
	}

	r, err := findReservation(cmd, a, args[0])
	if err != nil {
		return err
	}
	cancelled, err := a.reservations.Cancel(cmd.Context(), *r)
	if err != nil {
		return a.userError(err)
	}

	fmt.Printf("Бронирование %d: %s\n", cancelled.ID, cancelled.Status.Label())
	return nil
}

func findReservation(cmd *cobra.Command, a *app, rawID string) (*reservation.Reservation, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	list, err := a.reservations.List(cmd.Context())
	if err != nil {
		return nil, a.userError(err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("Бронирование %d не найдено", id)
}

// parseStartTime accepts RFC 3339 or the shorter local "2006-01-02T15:04".
func parseStartTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected time like 2026-09-05T19:00, got %q", s)
}
