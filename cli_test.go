package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/scores"
)

func TestLoadUserConfigAppliesUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[game]
verbose = true
muted = true

[scores]
server-url = "http://scores.local"
player-name = "Ana"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	opts := &options{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--config", path, "--player", "Ben"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if err := loadUserConfig(cmd, opts); err != nil {
		t.Fatalf("loadUserConfig: %v", err)
	}

	if !opts.verbose || !opts.muted {
		t.Errorf("file booleans not applied: %+v", opts)
	}
	if opts.serverURL != "http://scores.local" {
		t.Errorf("serverURL = %q", opts.serverURL)
	}
	if opts.player != "Ben" {
		t.Errorf("explicit flag should win, player = %q", opts.player)
	}
}

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		name     string
		opts     options
		wantNil  bool
		wantType string
	}{
		{"离线", options{offline: true, serverURL: "http://x"}, true, ""},
		{"服务器优先", options{serverURL: "http://x", dbPath: "ignored.db"}, false, "client"},
		{"本地数据库", options{dbPath: filepath.Join(t.TempDir(), "s.db")}, false, "sqlite"},
		{"都未设置", options{}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeStore, err := openBackend(&tt.opts)
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			defer closeStore()
			if (store == nil) != tt.wantNil {
				t.Fatalf("store = %v, wantNil %v", store, tt.wantNil)
			}
			switch tt.wantType {
			case "client":
				if _, ok := store.(*scores.Client); !ok {
					t.Errorf("expected *scores.Client, got %T", store)
				}
			case "sqlite":
				if _, ok := store.(*scores.SQLiteStore); !ok {
					t.Errorf("expected *scores.SQLiteStore, got %T", store)
				}
			}
		})
	}
}

func TestWriteLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	writeLeaderboard(&buf, nil)
	if !strings.Contains(buf.String(), "No finished sessions") {
		t.Errorf("empty leaderboard output = %q", buf.String())
	}

	buf.Reset()
	writeLeaderboard(&buf, []scores.LeaderboardEntry{
		{Name: "Eve", TotalScore: 300, CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)},
		{Name: "Cleo", TotalScore: 250, CreatedAt: time.Date(2026, 1, 3, 3, 4, 0, 0, time.UTC)},
	})
	out := buf.String()
	for _, want := range []string{"Eve", "300", "Cleo", "250", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("leaderboard output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Eve") > strings.Index(out, "Cleo") {
		t.Error("entries should keep the store order")
	}
}

func TestProgressRowsAndReset(t *testing.T) {
	catalog := config.NewGameCatalog(
		&config.GameDefinition{ID: "hairwashing", Name: "Hairwashing", Route: "/hairwashing", Slot: 3},
		&config.GameDefinition{ID: "toothbrushing", Name: "Toothbrushing", Route: "/toothbrushing", Slot: 2},
		&config.GameDefinition{ID: "handwashing", Name: "Handwashing", Route: "/handwashing", Slot: 1},
	)
	profile := &game.Profile{
		Completion: game.NewCompletionRegistry(nil),
		Flow:       game.NewFlowManager(nil, game.GameRoutesFrom(catalog)),
		Player:     game.NewPlayerSession(nil),
	}
	if err := profile.Completion.MarkCompleted("hairwashing"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	profile.Flow.CompleteGame("hairwashing")

	player := &scores.Player{Game3Score: 90, Game2Score: 40}
	rows := progressRows(catalog, profile, player)
	want := [][]string{
		{"Hairwashing", "completed", "90", "Excellent"},
		{"Toothbrushing", "open", "40", "Poor"},
		{"Handwashing", "locked", "0", "Poor"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v", rows)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}

	if err := profile.Player.Set("p1", "Ana"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := resetProfile(profile, false); err != nil {
		t.Fatalf("resetProfile: %v", err)
	}
	if profile.Completion.Count() != 0 || profile.Flow.EligibleGameIndex() != 0 {
		t.Error("progress should be cleared")
	}
	if !profile.Player.Active() {
		t.Error("player should survive a partial reset")
	}
	if err := resetProfile(profile, true); err != nil {
		t.Fatalf("resetProfile all: %v", err)
	}
	if profile.Player.Active() {
		t.Error("player should be cleared by --all")
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	cmd := newRootCmd(&options{})
	for _, name := range []string{"play", "leaderboard", "progress", "reset"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found == cmd {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
