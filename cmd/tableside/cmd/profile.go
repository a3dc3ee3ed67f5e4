package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and manage the account profile",
	RunE:  runProfileShow,
}

var profileUpdateReq gateway.UpdateProfileRequest

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  runProfileUpdate,
}

var (
	currentPassword string
	newPassword     string
)

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the account password",
	Long: `Change the password. On success the session ends and stored
credentials are cleared: log in again with the new password.`,
	RunE: runProfilePassword,
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileUpdateReq.Email, "email", "", "email address")
	profileUpdateCmd.Flags().StringVar(&profileUpdateReq.FirstName, "first-name", "", "first name")
	profileUpdateCmd.Flags().StringVar(&profileUpdateReq.LastName, "last-name", "", "last name")
	profileUpdateCmd.Flags().StringVar(&profileUpdateReq.Phone, "phone", "", "phone in E.164 format")
	profileUpdateCmd.Flags().StringVar(&profileUpdateReq.Address, "address", "", "delivery address")
	profileUpdateCmd.Flags().StringVar(&profileUpdateReq.City, "city", "", "city")

	profilePasswordCmd.Flags().StringVar(&currentPassword, "current", "", "current password (prompted when omitted)")
	profilePasswordCmd.Flags().StringVar(&newPassword, "new", "", "new password (prompted when omitted)")

	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profilePasswordCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	u := a.session.User()
	fmt.Printf("Имя пользователя: %s\n", u.Username)
	fmt.Printf("Email:            %s\n", u.Email)
	fmt.Printf("Имя:              %s\n", u.DisplayName())
	if u.Phone != "" {
		fmt.Printf("Телефон:          %s\n", u.Phone)
	}
	if u.Address != "" {
		fmt.Printf("Адрес:            %s, %s\n", u.Address, u.City)
	}
	fmt.Printf("Роль:             %s\n", u.Role)
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	user, err := a.session.UpdateProfile(cmd.Context(), profileUpdateReq)
	if err != nil {
		return a.userError(err)
	}

	fmt.Printf("Профиль обновлён: %s\n", user.DisplayName())
	return nil
}

func runProfilePassword(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if currentPassword == "" {
		currentPassword, err = promptLine("Текущий пароль: ")
		if err != nil {
			return err
		}
	}
	if newPassword == "" {
		newPassword, err = promptLine("Новый пароль: ")
		if err != nil {
			return err
		}
	}

	err = a.session.ChangePassword(cmd.Context(), gateway.ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		return a.userError(err)
	}

	// The old token is revoked server-side; end the session cleanly so
	// the next command prompts for the new password.
	a.session.Logout(cmd.Context())
	a.cart.Invalidate()

	fmt.Println("Пароль изменён. Войдите заново: tableside login")
	return nil
}
