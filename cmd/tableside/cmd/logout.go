package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear stored credentials",
	Long: `End the session. The server is notified on a best-effort basis;
local credentials are cleared even when the server is unreachable.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}

	a.session.Logout(cmd.Context())
	a.cart.Invalidate()

	fmt.Println("Вы вышли из системы")
	return nil
}
