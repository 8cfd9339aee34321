// Command verify_gameplay 无界面地完整通关每个小游戏定义
//
// 从磁盘读取 data/games 与 assets（与发布包相同的布局），解码遮罩，
// 用自动玩家执行一次无错误的通关，打印事件日志与最终得分。
// 任何一个游戏没有到达完成状态时以非零状态退出。
//
// 用法：
//
//	go run ./cmd/verify_gameplay
//	go run ./cmd/verify_gameplay -game toothbrushing -events
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jermochi/Hygin/pkg/app"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/systems"
)

var (
	root    = flag.String("root", ".", "包含 assets/ 与 data/ 的目录")
	gameID  = flag.String("game", "", "只验证指定的游戏ID（默认全部）")
	seed    = flag.Int64("seed", 1, "随机种子")
	limit   = flag.Float64("limit", 300, "每个游戏的最长运行时间（调度器秒）")
	events  = flag.Bool("events", false, "打印完整事件日志")
	verbose = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()
	app.ConfigureLogging(os.Stderr, *verbose)

	fsys := os.DirFS(*root)
	catalog, err := config.LoadGameCatalog(fsys, app.GamesDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load game catalog")
	}

	ids := catalog.IDs()
	if *gameID != "" {
		ids = []string{*gameID}
	}

	failed := 0
	for _, id := range ids {
		def, err := catalog.Get(id)
		if err != nil {
			log.Error().Err(err).Str("game", id).Msg("unknown game")
			failed++
			continue
		}
		if !verify(os.Stdout, fsys, def) {
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d games did not complete\n", failed, len(ids))
		os.Exit(1)
	}
	fmt.Printf("\nall %d games completed\n", len(ids))
}

// verify 通关一个游戏，返回是否到达完成状态
func verify(w io.Writer, fsys fs.FS, def *config.GameDefinition) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	masks := game.NewMaskLoader(fsys)
	masks.Load(ctx, def)
	if err := masks.Wait(); err != nil {
		log.Warn().Err(err).Str("game", def.ID).Msg("some masks failed to decode, using fallback bands")
	}

	var evlog []systems.Event
	var cues []config.CueConfig
	m := systems.NewStepStateMachine(def, systems.MachineOptions{
		Masks: masks,
		Rand:  rand.New(rand.NewSource(*seed)),
		Hooks: systems.MachineHooks{
			OnEvent: func(ev systems.Event) { evlog = append(evlog, ev) },
			OnCue:   func(c config.CueConfig) { cues = append(cues, c) },
		},
	})
	m.SetLayout(config.PlayArea())
	m.Begin()

	started := time.Now()
	phase := systems.NewAutoplayer(m).Run(*limit)

	fmt.Fprintf(w, "== %s (%s, slot %d, %d steps)\n", def.ID, def.Scoring.Strategy, def.Slot, len(def.Steps))
	if *events {
		for _, ev := range evlog {
			fmt.Fprintf(w, "  %8.3fs  step %-2d %-14s target=%d\n", ev.T, ev.Step, ev.Kind, ev.Target)
		}
	}
	counts := make(map[systems.EventKind]int)
	for _, ev := range evlog {
		counts[ev.Kind]++
	}
	fmt.Fprintf(w, "  targets: %d spawned, %d cleared, %d expired; %d wrong actions; %d cues\n",
		counts[systems.EventTargetSpawn], counts[systems.EventTargetSuccess],
		counts[systems.EventTargetFailed], counts[systems.EventWrongAction], len(cues))

	if phase != systems.PhaseComplete {
		fmt.Fprintf(w, "  FAILED: stopped in %s at step %d after %.1fs\n", phase, m.StepIndex(), m.Now())
		return false
	}
	res := m.Result()
	fmt.Fprintf(w, "  result: score %d (%s), raw %.2f, mistakes %d, remaining %.1fs, game time %.1fs, wall %s\n",
		res.Score, res.Tier.Label(), res.Raw, res.Mistakes, res.Remaining, m.Now(), time.Since(started).Round(time.Millisecond))
	return true
}
