package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/aggregator"
)

const analyzeSystemPrompt = `You are a basketball scouting analyst for a coaching staff. You are given
structured data computed from league statistics pages and a question from a coach.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable: focus on what the staff can prepare for.
- Avoid generic basketball advice unless it directly explains a pattern in the data.

Data glossary:
- Rotation: a team's top 8 scorers among players with enough games played.
- total_ppg / total_rpg / total_apg: sums over the rotation of per-game averages.
- avg_fg_pct / avg_three_pct: unweighted means over the rotation, in percent.
- total_to: rotation turnovers per game. Lower is better.
- diff_*: team A minus team B.
- edges: best individual per category from each full roster; winner is a team id, empty when even.
- lineup: projected starters (top 5 by minutes) and first two bench players.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeSeason int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var analyzeTeamCmd = &cobra.Command{
	Use:   "team <team-id> <question>",
	Short: "Ask about one team's rotation and leaders",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeTeam,
}

var analyzeMatchupCmd = &cobra.Command{
	Use:   "matchup <team-a> <team-b> <question>",
	Short: "Ask about a head-to-head projection",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnalyzeMatchup,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().IntVar(&analyzeSeason, "season", 0, "season to analyze (default: latest)")

	analyzeCmd.AddCommand(analyzeTeamCmd)
	analyzeCmd.AddCommand(analyzeMatchupCmd)
}

func runAnalyzeTeam(cmd *cobra.Command, args []string) error {
	teamID, question := args[0], args[1]
	players, err := loadAllPlayers()
	if err != nil {
		return err
	}
	season := analyzeSeason
	if season == 0 {
		season = latestSeason(players, teamID)
	}
	ts := aggregator.TeamAggregate(players, teamID, season)
	if ts == nil {
		return fmt.Errorf("no data for team %s in season %d", teamID, season)
	}

	contextJSON, err := json.Marshal(map[string]any{
		"team":         ts,
		"multi_season": aggregator.MultiSeasonAggregate(players, teamID),
	})
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, string(contextJSON), question)
}

func runAnalyzeMatchup(cmd *cobra.Command, args []string) error {
	a, b, question := args[0], args[1], args[2]
	players, err := loadAllPlayers()
	if err != nil {
		return err
	}
	season := analyzeSeason
	if season == 0 {
		season = latestSeason(players, a, b)
	}
	rep := aggregator.Matchup(players, a, b, season)
	if rep.Insufficient {
		return fmt.Errorf("insufficient data: %s", rep.Reason)
	}

	contextJSON, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, string(contextJSON), question)
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = cfg.AnthropicAPIKey
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
