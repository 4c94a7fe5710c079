package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/dmarquez/idlempire/internal/api/request"
	"github.com/dmarquez/idlempire/internal/api/response"
)

var pvpCmd = &cobra.Command{
	Use:   "pvp",
	Short: "Challenge other players and view battle results",
}

var pvpStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show win/loss record and reputation",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.PvPStats
		path := "/api/pvpStats?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpOpponentsCmd = &cobra.Command{
	Use:   "opponents",
	Short: "List challengeable opponents",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.Opponents
		path := "/api/pvpOpponents?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpChallengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Challenge another player",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		opponent, _ := cmd.Flags().GetString("opponent")

		var result response.CreateChallenge
		err := client.Post("/api/createPvPChallenge", request.CreateChallengeRequest{
			Username: username,
			Opponent: opponent,
		}, &result)
		if err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List incoming challenges awaiting a response",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.PendingChallenges
		path := "/api/pendingChallenges?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpRespondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Accept or reject a pending challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		challengeID, _ := cmd.Flags().GetString("challenge")
		accept, _ := cmd.Flags().GetBool("accept")

		var result response.Respond
		err := client.Post("/api/respondToChallenge", request.RespondToChallengeRequest{
			Username:    username,
			ChallengeID: challengeID,
			Accept:      accept,
		}, &result)
		if err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpBattleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Resolve an accepted challenge with your current game state",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		challengeID, _ := cmd.Flags().GetString("challenge")
		file, _ := cmd.Flags().GetString("file")

		state, err := readGameState(file)
		if err != nil {
			return err
		}

		var result response.Battle
		err = client.Post("/api/pvpBattle", request.BattleRequest{
			Username:    username,
			ChallengeID: challengeID,
			GameState:   state,
		}, &result)
		if err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show recent battle history",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.BattleResults
		path := "/api/battleResults?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpCompletedCmd = &cobra.Command{
	Use:   "completed",
	Short: "List challenges you issued that recently resolved",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")

		var result response.CompletedChallenges
		path := "/api/completedChallenges?username=" + url.QueryEscape(username)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a challenge's lifecycle state",
	RunE: func(cmd *cobra.Command, args []string) error {
		challengeID, _ := cmd.Flags().GetString("challenge")

		var result response.ChallengeStatus
		path := "/api/challengeStatus?challengeId=" + url.QueryEscape(challengeID)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

var pvpResultCmd = &cobra.Command{
	Use:   "result",
	Short: "Show a completed challenge's battle result",
	RunE: func(cmd *cobra.Command, args []string) error {
		challengeID, _ := cmd.Flags().GetString("challenge")

		var result response.ChallengeResult
		path := "/api/challengeResult?challengeId=" + url.QueryEscape(challengeID)
		if err := client.Get(path, &result); err != nil {
			return err
		}
		return out.Print(&result)
	},
}

func init() {
	userCmds := []*cobra.Command{
		pvpStatsCmd, pvpOpponentsCmd, pvpChallengeCmd, pvpPendingCmd,
		pvpRespondCmd, pvpBattleCmd, pvpResultsCmd, pvpCompletedCmd,
	}
	for _, cmd := range userCmds {
		cmd.Flags().StringP("username", "u", "", "account username")
		_ = cmd.MarkFlagRequired("username")
	}

	pvpChallengeCmd.Flags().String("opponent", "", "opponent username")
	_ = pvpChallengeCmd.MarkFlagRequired("opponent")

	for _, cmd := range []*cobra.Command{pvpRespondCmd, pvpBattleCmd, pvpStatusCmd, pvpResultCmd} {
		cmd.Flags().StringP("challenge", "c", "", "challenge ID")
		_ = cmd.MarkFlagRequired("challenge")
	}
	pvpRespondCmd.Flags().Bool("accept", false, "accept the challenge instead of rejecting it")
	pvpBattleCmd.Flags().StringP("file", "f", "-", "game state JSON file, - for stdin")

	pvpCmd.AddCommand(pvpStatsCmd)
	pvpCmd.AddCommand(pvpOpponentsCmd)
	pvpCmd.AddCommand(pvpChallengeCmd)
	pvpCmd.AddCommand(pvpPendingCmd)
	pvpCmd.AddCommand(pvpRespondCmd)
	pvpCmd.AddCommand(pvpBattleCmd)
	pvpCmd.AddCommand(pvpResultsCmd)
	pvpCmd.AddCommand(pvpCompletedCmd)
	pvpCmd.AddCommand(pvpStatusCmd)
	pvpCmd.AddCommand(pvpResultCmd)
}
