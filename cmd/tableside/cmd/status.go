package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}

	if !a.session.IsAuthenticated() {
		fmt.Println("Вы не вошли в систему")
		return nil
	}

	u := a.session.User()
	fmt.Printf("Вы вошли как %s (%s)\n", u.DisplayName(), u.Role)
	fmt.Printf("Учётные данные: %s\n", a.store.Path())
	return nil
}
