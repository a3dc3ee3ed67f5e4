package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Log in and persist the session",
	Long: `Log in with a username or email. The password is read from the
--password flag or prompted on stdin. On success the token and profile
are persisted, so later invocations stay logged in.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		password, err = promptLine("Пароль: ")
		if err != nil {
			return err
		}
	}

	user, err := a.session.Login(cmd.Context(), gateway.LoginRequest{
		UsernameOrEmail: args[0],
		Password:        password,
	})
	if err != nil {
		return a.userError(err)
	}

	fmt.Printf("Вы вошли как %s\n", user.DisplayName())
	return nil
}

// promptLine reads one line from stdin after printing the prompt.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
