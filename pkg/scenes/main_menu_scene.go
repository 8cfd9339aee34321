package scenes

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/scores"
	"github.com/jermochi/Hygin/pkg/systems"
	"github.com/jermochi/Hygin/pkg/utils"
)

// menuRequestTimeout 菜单中单次成绩请求的超时时间
const menuRequestTimeout = 10 * time.Second

// menuCard 主菜单中的一个游戏入口
type menuCard struct {
	button *components.Button
	def    *config.GameDefinition
	index  int
}

// menuResult 后台请求的结果，在 Update 中取回
type menuResult struct {
	player   *scores.Player
	entry    *scores.LeaderboardEntry
	err      error
	finished bool
}

// MainMenuScene represents the main menu screen of the game.
// It lists the minigames in their prescribed order and shows the player's progress.
type MainMenuScene struct {
	svc *Services

	cards  []menuCard
	footer components.ButtonBar

	muteButton   *components.Button
	finishButton *components.Button

	drag   *utils.DragManager
	router pointerRouter

	ctx     context.Context
	cancel  context.CancelFunc
	results chan menuResult
	pending bool

	// 最近一次读取到的玩家成绩
	player *scores.Player
	status string
}

// NewMainMenuScene creates the main menu.
//
// Parameters:
//   - svc: shared services; Submitter may be nil (offline play).
//
// Returns:
//   - A pointer to the newly created MainMenuScene. When a player session is
//     active, the player's best scores are fetched in the background.
func NewMainMenuScene(svc *Services) *MainMenuScene {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MainMenuScene{
		svc:     svc,
		drag:    utils.NewDragManager(),
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan menuResult, 2),
	}
	s.buildCards()
	s.buildFooter()
	s.refresh()

	if svc.Submitter != nil && svc.Profile.Player.Active() {
		s.fetchPlayer()
	}
	return s
}

func (s *MainMenuScene) buildCards() {
	games := s.svc.Profile.Flow.Games()
	rects := config.RowRects(len(games), config.MenuCardWidth, config.MenuCardHeight, config.MenuCardGap, config.MenuCardY)
	for i, g := range games {
		def, err := s.svc.Catalog.Get(g.ID)
		if err != nil {
			log.Warn().Err(err).Str("component", "MainMenuScene").Msg("game missing from catalog")
			continue
		}
		route := g.Route
		s.cards = append(s.cards, menuCard{
			def:   def,
			index: i,
			button: &components.Button{
				Rect:    rects[i],
				Label:   def.Name,
				OnClick: func() { s.svc.Scenes.Navigate(route) },
			},
		})
	}
}

func (s *MainMenuScene) buildFooter() {
	rects := config.RowRects(2, config.ButtonWidth, config.MenuToggleHeight, config.ButtonGap, config.MenuFooterY+40)
	s.muteButton = &components.Button{Rect: rects[0], OnClick: s.toggleMute}
	s.finishButton = &components.Button{Rect: rects[1], Label: "Finish session", OnClick: s.finishSession}
	s.footer = components.ButtonBar{s.muteButton, s.finishButton}
}

// refresh 根据进度更新按钮状态
func (s *MainMenuScene) refresh() {
	flow := s.svc.Profile.Flow
	for _, c := range s.cards {
		accessible := flow.CanAccessGame(c.index)
		completed := s.svc.Profile.Completion.IsCompleted(c.def.ID)
		best, hasBest := 0, false
		if s.player != nil {
			best, hasBest = s.player.Score(c.def.Slot), true
		}
		c.button.Badge = cardBadge(accessible, completed, best, hasBest)
		c.button.SetEnabled(accessible)
	}

	muted := s.svc.Audio != nil && s.svc.Audio.Muted()
	s.muteButton.Label = "Sound on"
	if muted {
		s.muteButton.Label = "Sound off"
	}
	s.muteButton.SetEnabled(s.svc.Audio != nil)
	s.finishButton.SetEnabled(canFinish(s.svc.Submitter != nil, s.svc.Profile.Player.Active(), flow.IsFreePlay()) && !s.pending)
}

// cardBadge 游戏卡片的状态文字
func cardBadge(accessible, completed bool, best int, hasBest bool) string {
	switch {
	case !accessible:
		return "Locked"
	case hasBest && best > 0:
		return fmt.Sprintf("Best %d %s", best, systems.TierFor(float64(best)).Label())
	case completed:
		return "Done"
	}
	return "Play"
}

// canFinish 只有在线玩家完成全部游戏后才能提交总分
func canFinish(online, active, freePlay bool) bool {
	return online && active && freePlay
}

func (s *MainMenuScene) toggleMute() {
	if s.svc.Audio == nil {
		return
	}
	s.svc.Audio.SetMuted(!s.svc.Audio.Muted())
	if err := s.svc.Profile.Settings.Save(); err != nil {
		log.Warn().Err(err).Str("component", "MainMenuScene").Msg("failed to save settings")
	}
	s.refresh()
}

func (s *MainMenuScene) fetchPlayer() {
	s.pending = true
	submitter := s.svc.Submitter
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, menuRequestTimeout)
		defer cancel()
		p, err := submitter.CurrentPlayer(ctx)
		r := menuResult{err: err}
		if err == nil {
			r.player = &p
		}
		select {
		case s.results <- r:
		case <-s.ctx.Done():
		}
	}()
}

func (s *MainMenuScene) finishSession() {
	if s.pending || s.svc.Submitter == nil {
		return
	}
	s.pending = true
	s.status = "Saving total score..."
	submitter := s.svc.Submitter
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, menuRequestTimeout)
		defer cancel()
		entry, err := submitter.FinishSession(ctx)
		r := menuResult{err: err, finished: true}
		if err == nil {
			r.entry = &entry
		}
		select {
		case s.results <- r:
		case <-s.ctx.Done():
		}
	}()
}

func (s *MainMenuScene) drainResults() {
	for {
		select {
		case r := <-s.results:
			s.pending = false
			s.apply(r)
		default:
			return
		}
	}
}

func (s *MainMenuScene) apply(r menuResult) {
	switch {
	case r.err != nil && r.finished:
		s.status = "Could not save the total score"
		log.Warn().Err(r.err).Str("component", "MainMenuScene").Msg("failed to finish session")
	case r.err != nil:
		s.status = "Scores unavailable"
		log.Warn().Err(r.err).Str("component", "MainMenuScene").Msg("failed to load player")
	case r.finished:
		s.player = nil
		s.status = fmt.Sprintf("%s finished with %d points!", r.entry.Name, r.entry.TotalScore)
	default:
		s.player = r.player
	}
	s.refresh()
}

// Update 处理点击与后台结果
func (s *MainMenuScene) Update(deltaTime float64) {
	s.drainResults()
	s.refresh()

	s.drag.Update()
	info := s.drag.GetInfo()
	x, y := float64(info.CurrentX), float64(info.CurrentY)
	buttons := s.buttons()
	buttons.HoverAt(x, y)
	if s.router.route(info, buttons.Hit(x, y)) == pointerClick {
		buttons.Click(x, y)
	}
}

func (s *MainMenuScene) buttons() components.ButtonBar {
	bar := make(components.ButtonBar, 0, len(s.cards)+len(s.footer))
	for _, c := range s.cards {
		bar = append(bar, c.button)
	}
	return append(bar, s.footer...)
}

// OnLeave 取消后台请求
func (s *MainMenuScene) OnLeave() {
	s.cancel()
}

// Draw 绘制主菜单
func (s *MainMenuScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	drawTextCentered(screen, "Hygin", WindowWidth/2, config.MenuTitleY-40, textTitle, colorHUD)
	drawTextCentered(screen, "Wash, brush and scrub the germs away!", WindowWidth/2, config.MenuTitleY+10, textNormal, colorText)

	drawTextCentered(screen, s.playerLine(), WindowWidth/2, config.MenuTitleY+50, textSmall, colorMuted)

	for _, c := range s.cards {
		drawButton(screen, c.button)
	}

	medal := s.svc.Profile.Completion.Medal()
	drawTextCentered(screen, medalLine(medal), WindowWidth/2, config.MenuFooterY, textNormal, medalColor(medal))

	for _, b := range s.footer {
		drawButton(screen, b)
	}
	if s.status != "" {
		drawTextCentered(screen, s.status, WindowWidth/2, WindowHeight-30, textSmall, colorText)
	}
}

func (s *MainMenuScene) playerLine() string {
	if s.svc.Submitter == nil {
		return "Playing offline"
	}
	p := s.svc.Profile.Player.Player()
	if p.ID == "" {
		return "No player registered"
	}
	if s.player != nil {
		return fmt.Sprintf("Player: %s  Total: %d", p.Name, s.player.Total())
	}
	return "Player: " + p.Name
}

func medalLine(m game.MedalStatus) string {
	switch m {
	case game.MedalGold:
		return "Gold medal: every game completed!"
	case game.MedalSilver:
		return "Silver medal"
	case game.MedalBronze:
		return "Bronze medal"
	}
	return "Complete a game to earn a medal"
}

func medalColor(m game.MedalStatus) color.RGBA {
	switch m {
	case game.MedalGold:
		return color.RGBA{R: 0xd4, G: 0xac, B: 0x0d, A: 0xff}
	case game.MedalSilver:
		return color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
	case game.MedalBronze:
		return color.RGBA{R: 0xb0, G: 0x6a, B: 0x2c, A: 0xff}
	}
	return colorMuted
}
