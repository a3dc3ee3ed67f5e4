package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
)

var registerReq gateway.RegisterRequest

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Register a new account. Registration does not log in: run
"tableside login" afterwards.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerReq.Username, "username", "", "username (3-50 characters)")
	registerCmd.Flags().StringVar(&registerReq.Email, "email", "", "email address")
	registerCmd.Flags().StringVarP(&registerReq.Password, "password", "p", "", "password (min 8 characters, prompted when omitted)")
	registerCmd.Flags().StringVar(&registerReq.FirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerReq.LastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&registerReq.Phone, "phone", "", "phone in E.164 format, e.g. +79161234567")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	if registerReq.Password == "" {
		registerReq.Password, err = promptLine("Пароль: ")
		if err != nil {
			return err
		}
	}

	user, err := a.session.Register(cmd.Context(), registerReq)
	if err != nil {
		return a.userError(err)
	}

	fmt.Printf("Аккаунт %s создан. Войдите: tableside login %s\n", user.Username, user.Username)
	return nil
}
