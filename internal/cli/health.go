package cli

import (
	"github.com/spf13/cobra"
)

type healthResult struct {
	server string
	Status string `json:"status"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := &healthResult{server: cfg.ServerURL}
		if err := client.GetRaw("/api/health", result); err != nil {
			return err
		}
		return out.Print(result)
	},
}
