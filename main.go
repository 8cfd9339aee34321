// Package main provides the hygin CLI: the desktop game plus score and progress tools.
package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/jermochi/Hygin/pkg/app"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/embedded"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	serverURL  string
	dbPath     string
	offline    bool
	verbose    bool

	// play
	fullscreen bool
	muted      bool
	player     string
	gameID     string

	// leaderboard
	limit int

	// reset
	resetAll bool
}

func main() {
	embedded.Init(assetsFS, dataFS)

	rootCmd := newRootCmd(&options{})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hygin",
		Short:         "Hygiene minigames: toothbrushing, hairwashing and handwashing",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultUserConfigPath(), "path to the TOML config file")
	pf.StringVar(&opts.serverURL, "server-url", "", "score server base URL (overrides db-path)")
	pf.StringVar(&opts.dbPath, "db-path", config.DefaultScoreDBPath(), "local SQLite score database")
	pf.BoolVar(&opts.offline, "offline", false, "do not save scores")
	pf.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	addPlayFlags(rootCmd, opts)

	rootCmd.AddCommand(newPlayCmd(opts))
	rootCmd.AddCommand(newLeaderboardCmd(opts))
	rootCmd.AddCommand(newProgressCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	return rootCmd
}

func addPlayFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().BoolVar(&opts.fullscreen, "fullscreen", false, "start in fullscreen")
	cmd.Flags().BoolVar(&opts.muted, "muted", false, "start with sound off")
	cmd.Flags().StringVar(&opts.player, "player", "", "register a new player with this name when none is active")
	cmd.Flags().StringVar(&opts.gameID, "game", "", "open this minigame directly (toothbrushing, hairwashing, handwashing)")
}

func newPlayCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start the game window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, opts)
		},
	}
	addPlayFlags(cmd, opts)
	return cmd
}

func runPlay(cmd *cobra.Command, opts *options) error {
	if err := loadUserConfig(cmd, opts); err != nil {
		return err
	}

	store, closeStore, err := openBackend(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	startRoute, err := gameRoute(opts.gameID)
	if err != nil {
		return err
	}

	cfg := app.Config{
		Verbose:    opts.verbose,
		StartRoute: startRoute,
		Scores:     store,
		PlayerName: opts.player,
	}
	if cmd.Flags().Changed("muted") || opts.muted {
		cfg.Muted = &opts.muted
	}

	gameApp, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Hygin")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if opts.fullscreen || gameApp.Fullscreen() {
		gameApp.SetFullscreen(true)
	}

	if err := ebiten.RunGame(gameApp); err != nil {
		return fmt.Errorf("game loop stopped: %w", err)
	}
	return nil
}

// gameRoute 根据游戏ID找到启动路由
func gameRoute(id string) (string, error) {
	if id == "" {
		return "", nil
	}
	catalog, err := config.LoadGameCatalog(embedded.FS(), app.GamesDir)
	if err != nil {
		return "", fmt.Errorf("failed to load game definitions: %w", err)
	}
	def, err := catalog.Get(id)
	if err != nil {
		return "", err
	}
	return def.Route, nil
}
