package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmarquez/idlempire/internal/api/response"
	"github.com/dmarquez/idlempire/internal/model"
)

// Output renders command results either as human-readable text or as the
// raw JSON body.
type Output struct {
	format string
	w      io.Writer
}

func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

func (o *Output) Print(result any) error {
	if o.format == "json" {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return o.printText(result)
}

func (o *Output) printText(result any) error {
	switch r := result.(type) {
	case *response.Success:
		fmt.Fprintln(o.w, "OK")
	case *response.Auth:
		fmt.Fprintf(o.w, "Logged in as %s (%s)\n", r.Username, r.UserID)
	case *response.SavedGames:
		if len(r.SavedGames) == 0 {
			fmt.Fprintln(o.w, "No saved games")
			return nil
		}
		tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDATE")
		for _, g := range r.SavedGames {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Name, g.Date.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	case *response.SaveGame:
		fmt.Fprintf(o.w, "Saved as %s\n", r.SaveID)
	case *response.LoadGame:
		fmt.Fprintf(o.w, "Save: %s (%s)\n", r.SaveName, r.SaveID)
		state, err := json.MarshalIndent(r.GameState, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(o.w, string(state))
	case *response.PvPStats:
		fmt.Fprintf(o.w, "Wins: %d  Losses: %d  Reputation: %d\n",
			r.Stats.Wins, r.Stats.Losses, r.Stats.Reputation)
	case *response.Opponents:
		if len(r.Opponents) == 0 {
			fmt.Fprintln(o.w, "No opponents available")
			return nil
		}
		tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USERNAME\tREPUTATION")
		for _, op := range r.Opponents {
			fmt.Fprintf(tw, "%s\t%d\n", op.Username, op.Reputation)
		}
		return tw.Flush()
	case *response.CreateChallenge:
		fmt.Fprintf(o.w, "Challenge created: %s\n", r.ChallengeID)
	case *response.PendingChallenges:
		if len(r.Challenges) == 0 {
			fmt.Fprintln(o.w, "No pending challenges")
			return nil
		}
		tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCHALLENGER")
		for _, c := range r.Challenges {
			fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Challenger)
		}
		return tw.Flush()
	case *response.Respond:
		if r.Accepted {
			fmt.Fprintln(o.w, "Challenge accepted")
		} else {
			fmt.Fprintln(o.w, "Challenge rejected")
		}
	case *response.Battle:
		o.printBattleResult(r.Result)
	case *response.BattleResults:
		if len(r.Results) == 0 {
			fmt.Fprintln(o.w, "No battle history")
			return nil
		}
		for _, rec := range r.Results {
			fmt.Fprintf(o.w, "[%s] ", rec.Date.Format("2006-01-02 15:04"))
			o.printBattleResult(&rec.BattleResult)
		}
	case *response.CompletedChallenges:
		if len(r.Challenges) == 0 {
			fmt.Fprintln(o.w, "No recently completed challenges")
			return nil
		}
		for _, c := range r.Challenges {
			fmt.Fprintf(o.w, "%s vs %s: ", c.ID, c.Opponent)
			o.printBattleResult(c.Result)
		}
	case *response.ChallengeStatus:
		fmt.Fprintln(o.w, r.Status)
	case *response.ChallengeResult:
		o.printBattleResult(r.Result)
	case *healthResult:
		fmt.Fprintf(o.w, "Server %s: %s\n", r.server, r.Status)
	default:
		return fmt.Errorf("no text renderer for %T", result)
	}
	return nil
}

func (o *Output) printBattleResult(r *model.BattleResult) {
	if r == nil {
		fmt.Fprintln(o.w, "No result")
		return
	}
	winner, loser := r.Player, r.Opponent
	if !r.PlayerWon {
		winner, loser = r.Opponent, r.Player
	}
	fmt.Fprintf(o.w, "%s (%.1f) vs %s (%.1f): %s wins, +$%d / %s loses $%d\n",
		r.Player, r.PlayerStrength, r.Opponent, r.OpponentStrength,
		winner, r.Reward, loser, r.Loss)
}
