package scenes

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/systems"
	"github.com/jermochi/Hygin/pkg/types"
	"github.com/jermochi/Hygin/pkg/utils"
)

// resultButtonsY 结束画面按钮行
const resultButtonsY = 400.0

// MinigameScene 一个小游戏的画面与输入
//
// 逻辑全部在 systems.GameShell 中；场景只负责把 ebiten 输入转换为
// GestureSample、绘制状态快照，以及把提示派发给音频和背景图。
type MinigameScene struct {
	svc   *Services
	def   *config.GameDefinition
	shell *systems.GameShell
	masks *game.MaskLoader

	cancel context.CancelFunc

	drag   *utils.DragManager
	router pointerRouter

	area     types.Rect // 参考区域（像素）
	subject  types.Rect // 背景图所在区域（与遮罩对齐）
	backdrop *ebiten.Image

	tools        []*components.Button
	toolIDs      []string
	hintButton   *components.Button
	retryButton  *components.Button
	nextButton   *components.Button
	homeButton   *components.Button
	resendButton *components.Button
}

// NewMinigameScene 创建小游戏场景并开始游戏
//
// 参数:
//   - svc: 共享服务
//   - def: 游戏定义
//
// 返回:
//   - 已进入 Intro 的场景；像素遮罩在后台解码
func NewMinigameScene(svc *Services, def *config.GameDefinition) *MinigameScene {
	ctx, cancel := context.WithCancel(context.Background())

	s := &MinigameScene{
		svc:    svc,
		def:    def,
		cancel: cancel,
		drag:   utils.NewDragManager(),
		area:   config.PlayArea(),
	}
	s.subject = subjectRect(def).Denormalize(s.area)

	s.masks = game.NewMaskLoader(svc.Resources.FS())
	s.masks.Load(ctx, def)

	opts := systems.ShellOptions{
		Submitter: svc.scoreSubmitter(),
		Navigator: svc.Scenes,
		Cues:      s,
		Masks:     s.masks,
		Rand:      svc.Rand,
	}
	if svc.Profile != nil {
		opts.Completion = svc.Profile.Completion
		opts.Flow = svc.Profile.Flow
	}
	s.shell = systems.NewGameShell(def, opts)
	s.shell.Machine().SetLayout(s.area)

	if v := firstVisual(def); v != "" {
		s.setBackdrop(v)
	}
	s.buildButtons()
	s.shell.Start()

	log.Info().Str("component", "MinigameScene").Str("game", def.ID).Msg("minigame started")
	return s
}

// subjectRect 第一个遮罩步骤的区域；没有遮罩时使用整个参考区域
func subjectRect(def *config.GameDefinition) types.Rect {
	for i := range def.Steps {
		if def.Steps[i].Mask != nil {
			return def.Steps[i].Region
		}
	}
	return types.Rect{X: 0, Y: 0, W: 1, H: 1}
}

// firstVisual 游戏使用的第一张背景图
func firstVisual(def *config.GameDefinition) string {
	for i := range def.Steps {
		if v := def.Steps[i].OnEnter.Visual; v != "" {
			return v
		}
	}
	return ""
}

func (s *MinigameScene) buildButtons() {
	rects := config.ToolbarRects(len(s.def.Tools))
	if s.def.RequireTool {
		for i, id := range s.def.Tools {
			tool := id
			s.tools = append(s.tools, &components.Button{
				Rect:    rects[i],
				Label:   tool,
				OnClick: func() { s.shell.SelectTool(tool) },
			})
			s.toolIDs = append(s.toolIDs, tool)
		}
	}

	s.hintButton = &components.Button{
		Rect:    config.HintButtonRect(),
		Label:   "Hint",
		OnClick: s.shell.UseHint,
	}
	s.retryButton = &components.Button{Label: "Play again", OnClick: s.retry}
	s.nextButton = &components.Button{Label: "Next game", OnClick: s.shell.GoNext}
	s.homeButton = &components.Button{Label: "Home", OnClick: s.shell.GoHome}
	s.resendButton = &components.Button{Label: "Save score", OnClick: s.shell.RetrySubmit}
}

func (s *MinigameScene) retry() {
	s.router.reset()
	s.drag.Reset()
	s.shell.Retry()
}

// resultButtons 结束画面的按钮
func resultButtons(phase systems.Phase, submit systems.SubmitStatus) []string {
	switch phase {
	case systems.PhaseComplete:
		if submit == systems.SubmitFailed {
			return []string{"resend", "retry", "next", "home"}
		}
		return []string{"retry", "next", "home"}
	case systems.PhaseLose:
		return []string{"retry", "home"}
	}
	return nil
}

// activeButtons 当前可以点击的按钮，按优先级排列
func (s *MinigameScene) activeButtons() components.ButtonBar {
	v := s.shell.View()
	if ids := resultButtons(v.Phase, v.Submit); ids != nil {
		rects := config.RowRects(len(ids), config.ButtonWidth, config.ButtonHeight, config.ButtonGap, resultButtonsY)
		bar := make(components.ButtonBar, len(ids))
		for i, id := range ids {
			b := s.buttonByID(id)
			b.Rect = rects[i]
			bar[i] = b
		}
		return bar
	}
	if v.Phase == systems.PhaseIntro {
		return nil
	}

	bar := components.ButtonBar{s.hintButton}
	s.hintButton.SetEnabled(v.Phase == systems.PhaseActive || v.Phase == systems.PhaseHintShown)
	for i, b := range s.tools {
		b.Selected = v.Tool == s.toolIDs[i]
		bar = append(bar, b)
	}
	return bar
}

func (s *MinigameScene) buttonByID(id string) *components.Button {
	switch id {
	case "resend":
		return s.resendButton
	case "next":
		return s.nextButton
	case "home":
		return s.homeButton
	}
	return s.retryButton
}

// Update 处理输入并推进游戏
func (s *MinigameScene) Update(deltaTime float64) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.shell.GoHome()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		s.shell.UseHint()
	}

	s.drag.Update()
	info := s.drag.GetInfo()
	x, y := float64(info.CurrentX), float64(info.CurrentY)
	buttons := s.activeButtons()
	buttons.HoverAt(x, y)

	sample := systems.GestureSample{X: x, Y: y, T: s.shell.Machine().Now()}
	switch s.router.route(info, buttons.Hit(x, y)) {
	case pointerDown:
		s.shell.PointerDown(sample)
	case pointerMove:
		s.shell.PointerMove(sample)
	case pointerUp:
		s.shell.PointerUp(sample)
	case pointerClick:
		buttons.Click(x, y)
	}

	s.shell.Update(deltaTime)
}

// PlayCue 实现 systems.CueDispatcher：切换背景并播放音效
func (s *MinigameScene) PlayCue(cue config.CueConfig) {
	if cue.Visual != "" {
		s.setBackdrop(cue.Visual)
	}
	if s.svc.Audio != nil {
		s.svc.Audio.PlayCue(cue)
	}
}

func (s *MinigameScene) setBackdrop(id string) {
	img, err := s.svc.Resources.LoadImage(game.VisualPath(id))
	if err != nil {
		log.Warn().Err(err).Str("component", "MinigameScene").Str("visual", id).Msg("failed to load backdrop")
		return
	}
	s.backdrop = img
}

// OnLeave 取消遮罩解码与进行中的提交
func (s *MinigameScene) OnLeave() {
	s.cancel()
	s.shell.Close()
	if s.svc.Audio != nil {
		s.svc.Audio.StopLoop()
	}
	if err := s.masks.Wait(); err != nil {
		log.Debug().Err(err).Str("component", "MinigameScene").Msg("mask decoding stopped")
	}
	log.Info().Str("component", "MinigameScene").Str("game", s.def.ID).Msg("minigame left")
}

// Draw 绘制场景
func (s *MinigameScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	v := s.shell.View()

	s.drawPlayArea(screen)
	s.drawStep(screen, v)
	s.drawHUD(screen, v)
	for _, b := range s.activeButtons() {
		if v.Phase.Terminal() {
			continue
		}
		drawButton(screen, b)
	}

	switch {
	case v.Phase == systems.PhaseIntro:
		s.drawIntro(screen)
	case v.Phase.Terminal():
		s.drawResult(screen, v)
	}
}

// scoreLine HUD 中的分数文字
func scoreLine(v systems.ShellView, strategy config.ScoringStrategy) string {
	if strategy == config.ScoringTimeBonus {
		return fmt.Sprintf("Time %d  Score %d", int(v.Remaining), systems.NormalizeScore(v.Score))
	}
	return fmt.Sprintf("Score %d", systems.NormalizeScore(v.Score))
}

// mistakeLine HUD 中的错误数文字
func mistakeLine(v systems.ShellView) string {
	if v.MistakeCap > 0 {
		return fmt.Sprintf("Mistakes %d/%d", v.Mistakes, v.MistakeCap)
	}
	return fmt.Sprintf("Mistakes %d", v.Mistakes)
}

// submitLine 结束画面中的保存状态
func submitLine(status systems.SubmitStatus) string {
	switch status {
	case systems.SubmitPending:
		return "Saving score..."
	case systems.SubmitOK:
		return "Score saved"
	case systems.SubmitFailed:
		return "Could not save the score"
	case systems.SubmitSkipped:
		return "Playing offline, score not saved"
	}
	return ""
}
