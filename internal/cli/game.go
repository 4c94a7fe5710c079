package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmarquez/idlempire/internal/api/request"
	"github.com/dmarquez/idlempire/internal/api/response"
	"github.com/dmarquez/idlempire/internal/model"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Save and load game state",
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved games",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.SavedGames
		path := "/api/savedGames?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var gameSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save game state from a JSON file or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		name, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")

		state, err := readGameState(file)
		if err != nil {
			return err
		}

		var result response.SaveGame
		err = client.Post("/api/saveGame", request.SaveGameRequest{
			Username:  username,
			SaveName:  name,
			GameState: state,
		}, &result)
		if err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var gameLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the saved game state",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.LoadGame
		path := "/api/loadGame?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

// readGameState reads a game-state document from the given file, or from
// stdin when the path is "-" or empty.
func readGameState(path string) (model.GameState, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read game state: %w", err)
	}

	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse game state: %w", err)
	}
	return state, nil
}

func init() {
	for _, cmd := range []*cobra.Command{gameListCmd, gameSaveCmd, gameLoadCmd} {
		cmd.Flags().StringP("username", "u", "", "account username")
		_ = cmd.MarkFlagRequired("username")
	}
	gameSaveCmd.Flags().String("name", "", "save slot name (first save only)")
	gameSaveCmd.Flags().StringP("file", "f", "-", "game state JSON file, - for stdin")

	gameCmd.AddCommand(gameListCmd)
	gameCmd.AddCommand(gameSaveCmd)
	gameCmd.AddCommand(gameLoadCmd)
}
