package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	out    *Output
)

var rootCmd = &cobra.Command{
	Use:   "idlempire",
	Short: "Command-line client for the idle empire game server",
	Long: `idlempire talks to a running game server over its HTTP API.

The server address can be set with --server or the IDLEMPIRE_SERVER
environment variable. After a successful login the session token is
written to the token file and sent with subsequent requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		client = NewClient(cfg)
		out = NewOutput(cfg.OutputFormat, cmd.OutOrStdout())
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "server base URL (default http://localhost:1777, env IDLEMPIRE_SERVER)")
	rootCmd.PersistentFlags().String("token", "", "session token (env IDLEMPIRE_TOKEN)")
	rootCmd.PersistentFlags().String("token-file", "", "path to the token file (default ~/.idlempire/token, env IDLEMPIRE_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(pvpCmd)
	rootCmd.AddCommand(healthCmd)
}
