package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jermochi/Hygin/pkg/app"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/embedded"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/scores"
	"github.com/jermochi/Hygin/pkg/systems"
)

const requestTimeout = 10 * time.Second

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2C7DA0")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A96A3"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CC7D8"))
)

var errOffline = errors.New("no score backend configured (use --server-url or --db-path)")

func newLeaderboardCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the final leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLeaderboard(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", scores.DefaultLeaderboardLimit, "number of entries to show")
	return cmd
}

func runLeaderboard(cmd *cobra.Command, opts *options) error {
	if err := loadUserConfig(cmd, opts); err != nil {
		return err
	}
	if opts.limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", opts.limit)
	}
	store, closeStore, err := openBackend(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return errOffline
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()
	entries, err := store.Leaderboard(ctx, opts.limit)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	writeLeaderboard(cmd.OutOrStdout(), entries)
	return nil
}

// writeLeaderboard prints the entries as a table, or a note when there are none.
func writeLeaderboard(w io.Writer, entries []scores.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No finished sessions yet."))
		return
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Name,
			strconv.Itoa(e.TotalScore),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Name", "Total", "Finished"}, rows))
}

func newProgressCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show local progress and the current player's best scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProgress(cmd, opts)
		},
	}
}

func runProgress(cmd *cobra.Command, opts *options) error {
	if err := loadUserConfig(cmd, opts); err != nil {
		return err
	}
	app.ConfigureLogging(cmd.ErrOrStderr(), opts.verbose)

	catalog, err := config.LoadGameCatalog(embedded.FS(), app.GamesDir)
	if err != nil {
		return fmt.Errorf("failed to load game definitions: %w", err)
	}
	profile := game.OpenProfile(game.AppName, catalog)

	var player *scores.Player
	store, closeStore, err := openBackend(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	if store != nil && profile.Player.Active() {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		p, err := scores.NewSubmitter(store, profile.Player).CurrentPlayer(ctx)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("scores unavailable: "+err.Error()))
		} else {
			player = &p
		}
	}

	w := cmd.OutOrStdout()
	if info := profile.Player.Player(); info.ID != "" {
		fmt.Fprintf(w, "Player: %s (%s)\n", info.Name, info.ID)
	} else {
		fmt.Fprintln(w, "Player: none")
	}
	fmt.Fprintf(w, "Medal: %s\n", profile.Completion.Medal())
	fmt.Fprintln(w, renderTable([]string{"Game", "Status", "Best", "Tier"}, progressRows(catalog, profile, player)))
	return nil
}

// progressRows one row per game in play order
func progressRows(catalog *config.GameCatalog, profile *game.Profile, player *scores.Player) [][]string {
	var rows [][]string
	for i, g := range profile.Flow.Games() {
		def, err := catalog.Get(g.ID)
		if err != nil {
			continue
		}
		status := "locked"
		switch {
		case profile.Completion.IsCompleted(def.ID):
			status = "completed"
		case profile.Flow.CanAccessGame(i):
			status = "open"
		}
		best, tier := "-", "-"
		if player != nil {
			score := player.Score(def.Slot)
			best = strconv.Itoa(score)
			tier = systems.TierFor(float64(score)).Label()
		}
		rows = append(rows, []string{def.Name, status, best, tier})
	}
	return rows
}

func newResetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset local progress (game order and completions)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.resetAll, "all", false, "also forget the current player")
	return cmd
}

func runReset(cmd *cobra.Command, opts *options) error {
	app.ConfigureLogging(cmd.ErrOrStderr(), opts.verbose)
	catalog, err := config.LoadGameCatalog(embedded.FS(), app.GamesDir)
	if err != nil {
		return fmt.Errorf("failed to load game definitions: %w", err)
	}
	profile := game.OpenProfile(game.AppName, catalog)
	if profile.Storage == nil {
		return errors.New("local storage unavailable, nothing to reset")
	}
	if err := resetProfile(profile, opts.resetAll); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
	return nil
}

func resetProfile(profile *game.Profile, all bool) error {
	profile.Flow.ResetFlow()
	if err := profile.Completion.Reset(); err != nil {
		return fmt.Errorf("failed to reset completions: %w", err)
	}
	if all {
		if err := profile.Player.Clear(); err != nil {
			return fmt.Errorf("failed to clear player: %w", err)
		}
	}
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
