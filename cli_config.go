package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/scores"
)

// loadUserConfig applies the TOML file to every flag the user did not set.
func loadUserConfig(cmd *cobra.Command, opts *options) error {
	fileCfg, err := config.LoadUserConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server-url", &opts.serverURL, fileCfg.Scores.ServerURL)
	applyStringConfig(cmd, "db-path", &opts.dbPath, fileCfg.Scores.DBPath)
	applyStringConfig(cmd, "player", &opts.player, fileCfg.Scores.PlayerName)
	applyBoolConfig(cmd, "verbose", &opts.verbose, fileCfg.Game.Verbose)
	applyBoolConfig(cmd, "fullscreen", &opts.fullscreen, fileCfg.Game.Fullscreen)
	applyBoolConfig(cmd, "muted", &opts.muted, fileCfg.Game.Muted)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return
	}
	*target = *value
}

// openBackend picks the score store: server first, then the local database.
// A nil store with a no-op closer means offline play.
func openBackend(opts *options) (scores.Store, func(), error) {
	switch {
	case opts.offline:
		return nil, func() {}, nil
	case opts.serverURL != "":
		return scores.NewClient(opts.serverURL, nil), func() {}, nil
	case opts.dbPath != "":
		st, err := scores.OpenSQLite(opts.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open score database: %w", err)
		}
		return st, func() {
			if cerr := st.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "failed to close score database: %v\n", cerr)
			}
		}, nil
	}
	return nil, func() {}, nil
}
