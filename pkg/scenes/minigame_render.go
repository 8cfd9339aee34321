package scenes

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/systems"
	"github.com/jermochi/Hygin/pkg/types"
	"github.com/jermochi/Hygin/pkg/utils"
)

// dragItemRadius 拖拽中物品的显示半径
const dragItemRadius = 22.0

func (s *MinigameScene) drawPlayArea(screen *ebiten.Image) {
	fillRect(screen, s.area, colorPanel)
	strokeRect(screen, s.area, 2, colorPanelEdge)
	if s.backdrop != nil {
		drawImageInto(screen, s.backdrop, s.subject)
	}
}

func (s *MinigameScene) drawStep(screen *ebiten.Image, v systems.ShellView) {
	if v.Phase == systems.PhaseIntro {
		return
	}
	m := s.shell.Machine()
	step := m.Step()

	switch {
	case step.Kind.RequiresGesture():
		strokeRect(screen, m.Region(), 1, colorPanelEdge)
		s.drawTarget(screen, m)
	case step.Kind == config.StepKindDragToTarget:
		s.drawDragStep(screen, m, step)
	case step.Kind == config.StepKindChoice:
		s.drawChoices(screen, m, v)
	case step.Kind == config.StepKindTransition:
		drawTextCentered(screen, step.Title, s.area.X+s.area.W/2, s.area.Y+s.area.H-60, textLarge, colorGood)
	}

	if v.Phase == systems.PhaseStepCleared {
		drawTextCentered(screen, "Great job!", s.area.X+s.area.W/2, s.area.Y+16, textLarge, colorGood)
	}
}

func (s *MinigameScene) drawTarget(screen *ebiten.Image, m *systems.StepStateMachine) {
	_, t, ok := m.Target()
	if !ok {
		return
	}
	cx, cy := float32(t.Position.X), float32(t.Position.Y)
	r := float32(t.Radius)

	switch t.Status {
	case components.TargetActive:
		pulse := 0.85 + 0.15*utils.Pulse(m.Now(), 1.0)
		vector.DrawFilledCircle(screen, cx, cy, r*float32(pulse), withAlpha(colorGerm, 0.75), true)
		// 剩余进度
		vector.DrawFilledCircle(screen, cx, cy, r*float32(t.Progress)*0.6, colorGerm, true)
		vector.StrokeCircle(screen, cx, cy, r, 2, colorGerm, true)
	case components.TargetSuccess:
		vector.StrokeCircle(screen, cx, cy, r*1.3, 3, colorGood, true)
		vector.StrokeCircle(screen, cx, cy, r*0.8, 2, withAlpha(colorGood, 0.6), true)
	case components.TargetFailed:
		vector.DrawFilledCircle(screen, cx, cy, r, withAlpha(colorBad, 0.6), true)
		vector.StrokeLine(screen, cx-r/2, cy-r/2, cx+r/2, cy+r/2, 3, colorBad, true)
		vector.StrokeLine(screen, cx+r/2, cy-r/2, cx-r/2, cy+r/2, 3, colorBad, true)
	}
}

func (s *MinigameScene) drawDragStep(screen *ebiten.Image, m *systems.StepStateMachine, step *config.StepConfig) {
	for _, wrong := range step.WrongDrops {
		r := wrong.Denormalize(s.area)
		strokeRect(screen, r, 2, colorMuted)
	}

	drop := step.Drop.Denormalize(s.area)
	fillRect(screen, drop, withAlpha(colorGood, 0.25))
	strokeRect(screen, drop, 2, colorGood)

	src := step.Source.Denormalize(s.area)
	drag := m.Drag()
	holding := drag != nil && drag.Holding
	if !src.IsEmpty() && !holding && m.Phase() == systems.PhaseActive {
		fillRect(screen, src, colorZone)
		strokeRect(screen, src, 2, colorButton)
		drawTextCentered(screen, "drag", src.X+src.W/2, src.Y+src.H/2-lineHeight/2, textSmall, colorText)
	}
	if holding {
		vector.DrawFilledCircle(screen, float32(drag.Current.X), float32(drag.Current.Y), dragItemRadius, colorButton, true)
		vector.StrokeCircle(screen, float32(drag.Current.X), float32(drag.Current.Y), dragItemRadius, 2, colorPanelEdge, true)
	}
}

func (s *MinigameScene) drawChoices(screen *ebiten.Image, m *systems.StepStateMachine, v systems.ShellView) {
	for _, c := range m.Choices() {
		r := c.Region.Denormalize(s.area)
		fill := colorPanel
		switch {
		case c.Wrong:
			fill = withAlpha(colorBad, 0.35)
		case c.Correct && v.Phase == systems.PhaseStepCleared:
			fill = withAlpha(colorGood, 0.45)
		}
		fillRect(screen, r, fill)
		strokeRect(screen, r, 2, colorButton)
		drawWrapped(screen, c.Text, insetRect(r, 8), textSmall, colorText)
	}
}

func (s *MinigameScene) drawHUD(screen *ebiten.Image, v systems.ShellView) {
	fillRect(screen, types.Rect{X: 0, Y: 0, W: WindowWidth, H: config.HUDHeight}, colorHUD)
	drawText(screen, v.GameName, config.HUDPadding, 8, textNormal, colorTextLight)
	if v.Phase != systems.PhaseIntro {
		drawText(screen, fmt.Sprintf("Step %d/%d", v.StepIndex+1, v.StepCount), config.HUDPadding, 32, textSmall, colorTextLight)
	}

	stats := scoreLine(v, s.def.Scoring.Strategy) + "   " + mistakeLine(v)
	hint := config.HintButtonRect()
	drawText(screen, stats, hint.X-config.HUDPadding-textWidth(stats, textSmall), 22, textSmall, colorTextLight)

	if v.Phase == systems.PhaseIntro || v.Phase.Terminal() {
		return
	}

	// 步骤说明
	top := s.area.Y + s.area.H + 4
	if len(s.tools) == 0 {
		drawTextCentered(screen, v.Title, WindowWidth/2, top+8, textLarge, colorText)
		drawTextCentered(screen, v.Subtitle, WindowWidth/2, top+40, textNormal, colorMuted)
	} else {
		drawText(screen, v.Title, config.HUDPadding, s.area.Y, textNormal, colorText)
		drawWrapped(screen, v.Subtitle, types.Rect{X: config.HUDPadding, Y: s.area.Y + 28, W: s.area.X - 2*config.HUDPadding, H: 200}, textSmall, colorMuted)
	}

	if v.WinCount > 0 && s.shell.Machine().Step().Kind.RequiresGesture() {
		counter := fmt.Sprintf("Germs %d/%d", v.SuccessCount, v.WinCount)
		drawText(screen, counter, s.area.X+8, s.area.Y+8, textSmall, colorGerm)
	}

	if v.ShowHint && v.Hint != "" {
		banner := types.Rect{X: s.area.X + 20, Y: s.area.Y + s.area.H - 70, W: s.area.W - 40, H: 56}
		fillRect(screen, banner, withAlpha(colorSelected, 0.9))
		drawWrapped(screen, v.Hint, insetRect(banner, 8), textNormal, colorTextLight)
	}
}

func (s *MinigameScene) drawIntro(screen *ebiten.Image) {
	fillRect(screen, types.Rect{X: 0, Y: 0, W: WindowWidth, H: WindowHeight}, colorOverlay)
	drawTextCentered(screen, s.def.Name, WindowWidth/2, 150, textTitle, colorTextLight)
	drawWrapped(screen, s.def.Intro, types.Rect{X: 150, Y: 230, W: WindowWidth - 300, H: 150}, textNormal, colorTextLight)
	drawTextCentered(screen, "Tap anywhere to start", WindowWidth/2, 420, textNormal, colorSelected)
}

func (s *MinigameScene) drawResult(screen *ebiten.Image, v systems.ShellView) {
	fillRect(screen, types.Rect{X: 0, Y: 0, W: WindowWidth, H: WindowHeight}, colorOverlay)

	if v.Phase == systems.PhaseLose {
		drawTextCentered(screen, "Oh no, too many mistakes!", WindowWidth/2, 180, textLarge, colorTextLight)
		drawTextCentered(screen, "The germs got away. Try again?", WindowWidth/2, 240, textNormal, colorTextLight)
	} else {
		tier := v.Result.Tier
		drawTextCentered(screen, "All clean!", WindowWidth/2, 140, textLarge, colorTextLight)
		drawTextCentered(screen, fmt.Sprintf("%d", v.Result.Score), WindowWidth/2, 190, textTitle*1.5, parseHexColor(tier.ColorHex()))
		drawTextCentered(screen, tier.Label(), WindowWidth/2, 262, textLarge, parseHexColor(tier.ColorHex()))
		drawTextCentered(screen, submitLine(v.Submit), WindowWidth/2, 330, textNormal, colorTextLight)
	}

	for _, b := range s.activeButtons() {
		drawButton(screen, b)
	}
}

// insetRect 向内收缩 margin 像素
func insetRect(r types.Rect, margin float64) types.Rect {
	return r.Expand(-margin)
}
