package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmarquez/idlempire/internal/api/request"
	"github.com/dmarquez/idlempire/internal/api/response"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts and sessions",
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		var result response.Success
		err := client.Post("/api/signup", request.SignupRequest{
			Username: username,
			Password: password,
		}, &result)
		if err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		var result response.Auth
		err := client.Post("/api/login", request.LoginRequest{
			Username: username,
			Password: password,
		}, &result)
		if err != nil {
			return err
		}

		token := client.SessionToken()
		if token == "" {
			return fmt.Errorf("server did not set a session cookie")
		}
		if err := cfg.SaveToken(token); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account for the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result response.Auth
		if err := client.Get("/api/verifySession", &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the session and remove the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result response.Success
		if err := client.Post("/api/logout", nil, &result); err != nil {
			return err
		}
		if err := cfg.ClearToken(); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{signupCmd, loginCmd} {
		cmd.Flags().StringP("username", "u", "", "account username")
		cmd.Flags().StringP("password", "p", "", "account password")
		_ = cmd.MarkFlagRequired("username")
		_ = cmd.MarkFlagRequired("password")
	}

	accountCmd.AddCommand(signupCmd)
	accountCmd.AddCommand(loginCmd)
	accountCmd.AddCommand(whoamiCmd)
	accountCmd.AddCommand(logoutCmd)
}
