package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:1777"

type Config struct {
	ServerURL    string
	Token        string
	TokenFile    string
	OutputFormat string
	Verbose      bool
}

// LoadConfig resolves configuration from flags, environment variables and
// the token file, in that order of precedence.
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	c := &Config{}

	c.ServerURL, _ = cmd.Flags().GetString("server")
	if c.ServerURL == "" {
		c.ServerURL = os.Getenv("IDLEMPIRE_SERVER")
	}
	if c.ServerURL == "" {
		c.ServerURL = defaultServer
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	c.TokenFile, _ = cmd.Flags().GetString("token-file")
	if c.TokenFile == "" {
		c.TokenFile = os.Getenv("IDLEMPIRE_TOKEN_FILE")
	}
	if c.TokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		c.TokenFile = filepath.Join(home, ".idlempire", "token")
	}

	c.Token, _ = cmd.Flags().GetString("token")
	if c.Token == "" {
		c.Token = os.Getenv("IDLEMPIRE_TOKEN")
	}
	if c.Token == "" {
		c.Token = readTokenFile(c.TokenFile)
	}

	c.OutputFormat, _ = cmd.Flags().GetString("output")
	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return nil, fmt.Errorf("unknown output format %q", c.OutputFormat)
	}

	c.Verbose, _ = cmd.Flags().GetBool("verbose")

	return c, nil
}

func readTokenFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken persists the session token so later invocations pick it up.
func (c *Config) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	c.Token = token
	return nil
}

// ClearToken removes the stored session token.
func (c *Config) ClearToken() error {
	if err := os.Remove(c.TokenFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	c.Token = ""
	return nil
}
