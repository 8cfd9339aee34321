package systems

import (
	"math/rand"
	"testing"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/mask"
	"github.com/jermochi/Hygin/pkg/types"
)

const frame = 1.0 / 60.0

type machineRecorder struct {
	events    []Event
	cues      []config.CueConfig
	completed []ScoreResult
	losses    int
}

func (r *machineRecorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func mustDefinition(t *testing.T, yamlContent string) *config.GameDefinition {
	t.Helper()
	def, err := config.ParseGameDefinition([]byte(yamlContent))
	if err != nil {
		t.Fatalf("invalid test definition: %v", err)
	}
	return def
}

func newTestMachine(t *testing.T, yamlContent string, masks MaskProvider) (*StepStateMachine, *machineRecorder) {
	t.Helper()
	r := &machineRecorder{}
	m := NewStepStateMachine(mustDefinition(t, yamlContent), MachineOptions{
		Masks: masks,
		Rand:  rand.New(rand.NewSource(7)),
		Hooks: MachineHooks{
			OnEvent:    func(ev Event) { r.events = append(r.events, ev) },
			OnCue:      func(c config.CueConfig) { r.cues = append(r.cues, c) },
			OnComplete: func(res ScoreResult) { r.completed = append(r.completed, res) },
			OnLose:     func() { r.losses++ },
		},
	})
	m.SetLayout(testReference)
	m.Begin()
	return m, r
}

func run(m *StepStateMachine, seconds float64) {
	frames := int(seconds*60 + 0.5)
	for i := 0; i < frames; i++ {
		m.Update(frame)
	}
}

// strokeOver 在当前目标上做 reversals 次上下反转
func strokeOver(m *StepStateMachine, reversals int) {
	_, target, ok := m.Target()
	if !ok {
		return
	}
	p := target.Position
	m.PointerDown(GestureSample{X: p.X, Y: p.Y - 20})
	m.PointerMove(GestureSample{X: p.X, Y: p.Y - 20})
	y := p.Y + 20
	for i := 0; i < reversals+1; i++ {
		m.PointerMove(GestureSample{X: p.X, Y: y})
		if y > p.Y {
			y = p.Y - 20
		} else {
			y = p.Y + 20
		}
	}
	m.PointerUp(GestureSample{X: p.X, Y: y})
}

// rubOver 在当前目标附近画 laps 圈边长 40 的正方形
func rubOver(m *StepStateMachine, laps int) {
	_, target, ok := m.Target()
	if !ok {
		return
	}
	p := target.Position
	square := []types.Point{{X: p.X - 20, Y: p.Y - 20}, {X: p.X + 20, Y: p.Y - 20}, {X: p.X + 20, Y: p.Y + 20}, {X: p.X - 20, Y: p.Y + 20}}
	m.PointerDown(GestureSample{X: square[0].X, Y: square[0].Y})
	for i := 0; i < laps; i++ {
		for _, q := range square {
			m.PointerMove(GestureSample{X: q.X, Y: q.Y})
		}
	}
	m.PointerMove(GestureSample{X: square[0].X, Y: square[0].Y})
	m.PointerUp(GestureSample{X: square[0].X, Y: square[0].Y})
}

// dragTo 从 from 拖到 to
func dragTo(m *StepStateMachine, from, to types.Point) {
	m.PointerDown(GestureSample{X: from.X, Y: from.Y})
	m.PointerMove(GestureSample{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2})
	m.PointerMove(GestureSample{X: to.X, Y: to.Y})
	m.PointerUp(GestureSample{X: to.X, Y: to.Y})
}

const singleStrokeGame = `
id: stroke
slot: 2
lose: {enabled: true, mistakeCap: 3}
steps:
  - kind: directionalStroke
    region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}
    target: {winCount: 5, requiredStrokes: 3}
`

func TestIntroAndHintBeat(t *testing.T) {
	m, _ := newTestMachine(t, singleStrokeGame, nil)
	if m.Phase() != PhaseIntro {
		t.Fatalf("expected intro, got %s", m.Phase())
	}
	run(m, 5)
	if m.Phase() != PhaseIntro {
		t.Fatal("intro must wait for the player")
	}

	m.PointerDown(GestureSample{X: 10, Y: 10})
	if m.Phase() != PhaseHintShown {
		t.Fatalf("expected hint beat after intro, got %s", m.Phase())
	}
	if _, _, ok := m.Target(); ok {
		t.Fatal("no target may spawn during the hint beat")
	}
	run(m, 1.9)
	if m.Phase() != PhaseHintShown {
		t.Fatalf("hint beat ended early: %s", m.Phase())
	}
	run(m, 0.2)
	if m.Phase() != PhaseActive {
		t.Fatalf("expected active after the hint beat, got %s", m.Phase())
	}
	if _, _, ok := m.Target(); !ok {
		t.Fatal("expected a target once active")
	}
}

func TestReversalsClearTarget(t *testing.T) {
	m, r := newTestMachine(t, singleStrokeGame, nil)
	m.DismissIntro()
	run(m, 2.1)

	_, target, _ := m.Target()
	strokeOver(m, 3)

	if target.Status != components.TargetSuccess {
		t.Fatalf("expected success after 3 reversals, got %s (progress %v)", target.Status, target.Progress)
	}
	if m.Session().SuccessCount != 1 {
		t.Errorf("expected successCount 1, got %d", m.Session().SuccessCount)
	}
	if r.count(EventStrokeUnit) != 3 {
		t.Errorf("expected 3 stroke units, got %d", r.count(EventStrokeUnit))
	}
}

func TestTwoReversalsLeaveTargetActive(t *testing.T) {
	m, _ := newTestMachine(t, singleStrokeGame, nil)
	m.DismissIntro()
	run(m, 2.1)

	_, target, _ := m.Target()
	strokeOver(m, 2)
	if target.Status != components.TargetActive || target.Progress <= 0 {
		t.Errorf("2 of 3 units must leave the target active, got %s %v", target.Status, target.Progress)
	}
}

func TestTargetExpires(t *testing.T) {
	m, r := newTestMachine(t, singleStrokeGame, nil)
	m.DismissIntro()
	run(m, 2.1)
	_, target, _ := m.Target()

	run(m, 3.1)
	if target.Status != components.TargetFailed {
		t.Fatalf("expected failed after 3s without input, got %s", target.Status)
	}
	if m.Session().MistakeCount != 1 {
		t.Errorf("expected mistakeCount 1, got %d", m.Session().MistakeCount)
	}
	if r.count(EventTargetFailed) != 1 {
		t.Errorf("expected one failure event, got %d", r.count(EventTargetFailed))
	}
}

func TestLoseOnMistakeCap(t *testing.T) {
	m, r := newTestMachine(t, singleStrokeGame, nil)
	m.DismissIntro()
	run(m, 30)

	if m.Phase() != PhaseLose {
		t.Fatalf("expected lose, got %s", m.Phase())
	}
	if m.Session().MistakeCount != 3 {
		t.Errorf("expected 3 mistakes, got %d", m.Session().MistakeCount)
	}
	if spawns := r.count(EventTargetSpawn); spawns != 3 {
		t.Errorf("expected exactly 3 spawns before the lose, got %d", spawns)
	}
	if r.losses != 1 {
		t.Errorf("expected one lose notification, got %d", r.losses)
	}
	// 失败事件之后不再有生成
	lastSpawn, loseAt := -1, -1
	for i, ev := range r.events {
		switch ev.Kind {
		case EventTargetSpawn:
			lastSpawn = i
		case EventLose:
			loseAt = i
		}
	}
	if lastSpawn > loseAt {
		t.Error("a target spawned after the lose transition")
	}

	m.Retry()
	s := m.Session()
	if m.Phase() != PhaseIntro || s.MistakeCount != 0 || s.Score != 0 || s.CurrentStepIndex != 0 || s.Finished {
		t.Errorf("retry must fully reset the session, got phase %s %+v", m.Phase(), *s)
	}
	if _, _, ok := m.Target(); ok {
		t.Error("retry must remove the displayed target")
	}
}

func TestLoseDisabledKeepsPlaying(t *testing.T) {
	m, _ := newTestMachine(t, `
id: g
slot: 1
steps:
  - kind: directionalStroke
    target: {winCount: 5}
`, nil)
	m.DismissIntro()
	run(m, 2.1+4.6*5)
	if m.Phase() != PhaseActive {
		t.Fatalf("games without a lose condition never lose, got %s", m.Phase())
	}
	if m.Session().MistakeCount < 5 {
		t.Errorf("expected at least 5 mistakes, got %d", m.Session().MistakeCount)
	}
}

func TestPerfectGame(t *testing.T) {
	m, r := newTestMachine(t, `
id: perfect
slot: 2
lose: {enabled: true}
scoring: {strategy: perStep, stepPoints: 20}
steps:
  - {kind: directionalStroke, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 1, requiredStrokes: 3}}
  - {kind: directionalStroke, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 1, requiredStrokes: 3}}
  - {kind: directionalStroke, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 1, requiredStrokes: 3}}
  - {kind: circularMotion, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 1, requiredStrokes: 3}}
  - {kind: directionalStroke, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 1, requiredStrokes: 3}}
`, nil)
	m.DismissIntro()

	lastIndex := 0
	for step := 0; step < 5; step++ {
		run(m, 2.1)
		if m.Phase() != PhaseActive {
			t.Fatalf("step %d: expected active, got %s", step, m.Phase())
		}
		if m.Step().Kind == config.StepKindCircularMotion {
			rubOver(m, 2)
		} else {
			strokeOver(m, 3)
		}
		run(m, 1.3)
		if m.StepIndex() < lastIndex {
			t.Fatalf("step index went backwards: %d -> %d", lastIndex, m.StepIndex())
		}
		lastIndex = m.StepIndex()
	}

	if m.Phase() != PhaseComplete {
		t.Fatalf("expected complete, got %s", m.Phase())
	}
	if len(r.completed) != 1 {
		t.Fatalf("expected one completion, got %d", len(r.completed))
	}
	res := r.completed[0]
	if res.Score != 100 || res.Tier != TierExcellent {
		t.Errorf("expected 100 Excellent, got %d %s", res.Score, res.Tier)
	}
	if r.count(EventTargetSuccess) != 5 || r.count(EventTargetFailed) != 0 {
		t.Errorf("expected 5 clears and no failures, got %d / %d", r.count(EventTargetSuccess), r.count(EventTargetFailed))
	}
}

func TestDragToTargetStep(t *testing.T) {
	m, r := newTestMachine(t, `
id: drag
slot: 1
steps:
  - kind: dragToTarget
    source: {x: 0, y: 0, w: 0.2, h: 0.2}
    drop: {x: 0.8, y: 0.8, w: 0.2, h: 0.2}
    wrongDrops:
      - {x: 0.8, y: 0, w: 0.2, h: 0.2}
  - kind: transition
    duration: 1
`, nil)
	m.DismissIntro()
	if m.Phase() != PhaseActive {
		t.Fatalf("drag steps skip the hint beat, got %s", m.Phase())
	}

	source := types.Point{X: 40, Y: 40}
	// 从拖拽源以外开始的拖拽不算
	dragTo(m, types.Point{X: 200, Y: 200}, types.Point{X: 360, Y: 360})
	if m.StepIndex() != 0 {
		t.Fatal("a drag that did not start on the source must not complete the step")
	}

	// 松开在空白处：什么都不发生
	dragTo(m, source, types.Point{X: 200, Y: 200})
	if m.Session().MistakeCount != 0 {
		t.Error("dropping on empty space is not a mistake")
	}

	// 松开在错误区域：错误操作
	dragTo(m, source, types.Point{X: 360, Y: 40})
	if m.Session().MistakeCount != 1 || r.count(EventWrongAction) != 1 {
		t.Errorf("expected one wrong drop, got %d", m.Session().MistakeCount)
	}

	dragTo(m, source, types.Point{X: 360, Y: 360})
	if m.StepIndex() != 1 {
		t.Fatalf("expected to advance to the transition step, got %d", m.StepIndex())
	}
	run(m, 1.1)
	if m.Phase() != PhaseComplete {
		t.Fatalf("expected transition to auto-complete the game, got %s", m.Phase())
	}
	// 错误发生时分数为 0，扣分被截断；唯一的计分步骤得 100 分
	if got := m.Result().Score; got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestChoiceStep(t *testing.T) {
	m, r := newTestMachine(t, `
id: choice
slot: 1
steps:
  - kind: choice
    choices:
      - {text: towel, correct: true, region: {x: 0, y: 0, w: 0.3, h: 0.3}}
      - {text: hand, region: {x: 0.35, y: 0, w: 0.3, h: 0.3}}
      - {text: soap, region: {x: 0.7, y: 0, w: 0.3, h: 0.3}}
`, nil)
	m.DismissIntro()

	m.SelectChoice(1)
	m.SelectChoice(1) // 已标记的选项再次点击被忽略
	if m.Session().MistakeCount != 1 {
		t.Errorf("expected one mistake, got %d", m.Session().MistakeCount)
	}
	if !m.Choices()[1].Wrong {
		t.Error("wrong choice must stay marked")
	}

	// 通过点击区域选择
	m.PointerDown(GestureSample{X: 40, Y: 40})
	m.PointerUp(GestureSample{X: 40, Y: 40})
	if m.Phase() != PhaseStepCleared {
		t.Fatalf("expected step cleared after the correct choice, got %s", m.Phase())
	}
	run(m, 0.9)
	if m.Phase() != PhaseStepCleared {
		t.Fatal("choice steps wait before advancing")
	}
	run(m, 0.2)
	if m.Phase() != PhaseComplete {
		t.Fatalf("expected complete, got %s", m.Phase())
	}
	if r.completed[0].Score != 100 || r.completed[0].Mistakes != 1 {
		t.Errorf("expected 100 with one mistake, got %+v", r.completed[0])
	}
}

func TestChoiceShuffleKeepsOneCorrect(t *testing.T) {
	m, _ := newTestMachine(t, `
id: choice
slot: 1
steps:
  - kind: choice
    shuffle: true
    choices:
      - {text: a, correct: true, region: {x: 0, y: 0, w: 0.3, h: 0.3}}
      - {text: b, region: {x: 0.35, y: 0, w: 0.3, h: 0.3}}
      - {text: c, region: {x: 0.7, y: 0, w: 0.3, h: 0.3}}
`, nil)
	for i := 0; i < 10; i++ {
		m.Begin()
		m.DismissIntro()
		correct := 0
		for _, c := range m.Choices() {
			if c.Correct {
				correct++
				if c.Text != "a" {
					t.Fatalf("correct flag must follow its text, got %q", c.Text)
				}
			}
		}
		if correct != 1 {
			t.Fatalf("expected exactly one correct choice, got %d", correct)
		}
	}
}

func TestToolSelection(t *testing.T) {
	m, _ := newTestMachine(t, `
id: hair
slot: 3
requireTool: true
tools: [comb, towel]
scoring:
  strategy: timeBonus
  base: 60
  countdownSeconds: 100
  bonusPerSecond: 0.4
  wrongToolPenalty: 5
  hintPenalty: 3
steps:
  - kind: directionalStroke
    tool: comb
    region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}
    target: {winCount: 1, requiredStrokes: 3}
`, nil)
	m.DismissIntro()
	run(m, 2.1)
	_, target, _ := m.Target()

	strokeOver(m, 3)
	if target.Status != components.TargetActive || target.Received != 0 {
		t.Fatal("strokes without the right tool must be ignored")
	}

	if m.SelectTool("towel") {
		t.Error("towel is the wrong tool")
	}
	m.SelectTool("towel") // 重复选择同一个错误工具不再计数
	if m.Session().WrongTools != 1 || m.Session().MistakeCount != 1 {
		t.Errorf("expected one wrong tool, got %d", m.Session().WrongTools)
	}
	if !m.SelectTool("comb") {
		t.Fatal("comb is the right tool")
	}

	strokeOver(m, 3)
	if target.Status != components.TargetSuccess {
		t.Fatalf("expected success with the right tool, got %s", target.Status)
	}
	if m.CurrentScore() != 55 {
		t.Errorf("expected 60 - 5 = 55 before the time bonus, got %v", m.CurrentScore())
	}
}

func TestToolPickedDuringStepPause(t *testing.T) {
	m, _ := newTestMachine(t, `
id: hair
slot: 3
requireTool: true
tools: [shampoo, hands]
scoring:
  strategy: timeBonus
  base: 60
  countdownSeconds: 100
  bonusPerSecond: 0.4
  wrongToolPenalty: 5
steps:
  - kind: dragToTarget
    tool: shampoo
    source: {x: 0, y: 0, w: 0.2, h: 0.2}
    drop: {x: 0.8, y: 0.8, w: 0.2, h: 0.2}
    completeDelay: 0.8
  - kind: circularMotion
    tool: hands
    region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}
    target: {winCount: 1, requiredStrokes: 3}
`, nil)
	m.DismissIntro()
	if !m.SelectTool("shampoo") {
		t.Fatal("shampoo is the tool of the first step")
	}
	dragTo(m, types.Point{X: 40, Y: 40}, types.Point{X: 360, Y: 360})
	if m.Phase() != PhaseStepCleared {
		t.Fatalf("expected the completion pause, got %s", m.Phase())
	}

	t.Run("等待期间选择下一步的工具不计错误", func(t *testing.T) {
		if !m.SelectTool("hands") {
			t.Error("hands is the tool of the next step")
		}
		s := m.Session()
		if s.MistakeCount != 0 || s.WrongTools != 0 {
			t.Errorf("picking ahead must not be charged, got %d mistakes %d wrong tools", s.MistakeCount, s.WrongTools)
		}
		if m.CurrentScore() != 60 {
			t.Errorf("expected no penalty, got %v", m.CurrentScore())
		}
	})

	t.Run("进入下一步后无需重新选择", func(t *testing.T) {
		run(m, 0.9)
		if m.StepIndex() != 1 {
			t.Fatalf("expected the second step, got %d", m.StepIndex())
		}
		run(m, 2.1)
		_, target, ok := m.Target()
		if !ok {
			t.Fatal("expected a target once active")
		}
		rubOver(m, 2)
		if target.Status != components.TargetSuccess {
			t.Errorf("the tool picked during the pause must carry over, got %s", target.Status)
		}
		if m.Session().WrongTools != 0 {
			t.Errorf("expected no wrong tools, got %d", m.Session().WrongTools)
		}
	})
}

func TestWrongToolDuringStepPauseNotCharged(t *testing.T) {
	m, _ := newTestMachine(t, `
id: hair
slot: 3
requireTool: true
tools: [shampoo, hands]
steps:
  - kind: dragToTarget
    tool: shampoo
    source: {x: 0, y: 0, w: 0.2, h: 0.2}
    drop: {x: 0.8, y: 0.8, w: 0.2, h: 0.2}
    completeDelay: 0.8
  - kind: circularMotion
    tool: hands
    region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}
    target: {winCount: 1, requiredStrokes: 3}
`, nil)
	m.DismissIntro()
	m.SelectTool("shampoo")
	dragTo(m, types.Point{X: 40, Y: 40}, types.Point{X: 360, Y: 360})

	if m.SelectTool("shampoo") {
		t.Error("shampoo is not the tool of the next step")
	}
	if m.Session().MistakeCount != 0 || m.Session().WrongTools != 0 {
		t.Errorf("no step is active during the pause, got %d mistakes", m.Session().MistakeCount)
	}
}

func TestCloseCancelsTimers(t *testing.T) {
	m, r := newTestMachine(t, singleStrokeGame, nil)
	m.DismissIntro()
	run(m, 2.1)
	if _, _, ok := m.Target(); !ok {
		t.Fatal("expected an active target")
	}
	spawns := r.count(EventTargetSpawn)

	m.Close()
	if n := m.timers.Pending(); n != 0 {
		t.Errorf("expected no pending timers after close, got %d", n)
	}
	if _, _, ok := m.Target(); ok {
		t.Error("close must remove the displayed target")
	}

	run(m, 5)
	if r.count(EventTargetFailed) != 0 || r.count(EventTargetSpawn) != spawns {
		t.Error("no timer may fire after close")
	}
	if m.Session().MistakeCount != 0 {
		t.Errorf("expected no mistakes after close, got %d", m.Session().MistakeCount)
	}
}

func TestUseHint(t *testing.T) {
	m, _ := newTestMachine(t, `
id: hint
slot: 3
scoring: {strategy: timeBonus, base: 60, countdownSeconds: 0, hintPenalty: 3}
steps:
  - kind: dragToTarget
    drop: {x: 0.8, y: 0.8, w: 0.2, h: 0.2}
`, nil)
	m.UseHint()
	if m.Session().HintsUsed != 0 {
		t.Fatal("hints are unavailable during the intro")
	}
	m.DismissIntro()
	m.UseHint()
	if !m.HintVisible() {
		t.Fatal("expected the hint to be visible")
	}
	run(m, 2.1)
	if m.HintVisible() {
		t.Error("hint must hide after the hint display time")
	}
	if m.CurrentScore() != 57 {
		t.Errorf("expected 60 - 3 = 57, got %v", m.CurrentScore())
	}
}

type fakeMasks struct {
	m     *mask.PixelMask
	ready bool
}

func (f *fakeMasks) Mask(int) (*mask.PixelMask, bool) { return f.m, f.ready }

func TestActivationWaitsForMask(t *testing.T) {
	masks := &fakeMasks{}
	m, _ := newTestMachine(t, `
id: mask
slot: 2
steps:
  - kind: pixelMaskStroke
    region: {x: 0, y: 0, w: 1, h: 1}
    mask: {image: mouth.png, criteria: alpha}
`, masks)
	m.DismissIntro()
	run(m, 3)
	if m.Phase() != PhaseHintShown {
		t.Fatalf("activation must wait for the mask, got %s", m.Phase())
	}

	masks.m = buildTestMask(t)
	masks.ready = true
	run(m, frame)
	if m.Phase() != PhaseActive {
		t.Fatalf("expected active once the mask is ready, got %s", m.Phase())
	}
	_, target, ok := m.Target()
	if !ok || target.Source != SpawnSourceMask {
		t.Fatalf("expected a mask placed target, got %+v", target)
	}
	if target.Position.Y > 200 {
		t.Errorf("target must land on the top half mask, got %+v", target.Position)
	}
}

func TestUnavailableMaskFallsBack(t *testing.T) {
	m, _ := newTestMachine(t, `
id: mask
slot: 2
steps:
  - kind: pixelMaskStroke
    region: {x: 0, y: 0, w: 1, h: 1}
    fallback: {x: 0.2, y: 0.2, w: 0.6, h: 0.2}
    mask: {image: missing.png, criteria: alpha}
`, &fakeMasks{ready: true})
	m.DismissIntro()
	run(m, 2.1)
	_, target, ok := m.Target()
	if !ok || target.Source != SpawnSourceBand {
		t.Fatalf("expected the fallback band, got %+v", target)
	}
}

func TestLayoutNotReadyIsSafe(t *testing.T) {
	m, _ := newTestMachine(t, singleStrokeGame, nil)
	m.SetLayout(types.Rect{})
	m.DismissIntro()
	run(m, 3)
	m.PointerDown(GestureSample{X: 1, Y: 1})
	m.PointerMove(GestureSample{X: 1, Y: 100})
	m.PointerUp(GestureSample{X: 1, Y: 100})
	if m.Phase() != PhaseHintShown {
		t.Fatalf("activation must wait for the layout, got %s", m.Phase())
	}
	m.SetLayout(testReference)
	run(m, frame)
	if m.Phase() != PhaseActive {
		t.Fatalf("expected active once measured, got %s", m.Phase())
	}
}

func TestStaleTimersAfterRetry(t *testing.T) {
	m, r := newTestMachine(t, singleStrokeGame, nil)
	m.DismissIntro()
	run(m, 2.1)
	strokeOver(m, 3) // 成功，1.2 秒后的移除与后续生成都已登记

	m.Retry()
	before := len(r.events)
	run(m, 20)
	if len(r.events) != before {
		t.Errorf("stale timers produced events after retry: %+v", r.events[before:])
	}
	if m.Phase() != PhaseIntro || m.Session().SuccessCount != 0 {
		t.Errorf("expected a clean intro, got %s %+v", m.Phase(), *m.Session())
	}
}

func TestEventLogInvariants(t *testing.T) {
	m, r := newTestMachine(t, `
id: mixed
slot: 1
steps:
  - {kind: directionalStroke, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 3, requiredStrokes: 2}}
  - {kind: circularMotion, region: {x: 0.25, y: 0.25, w: 0.5, h: 0.5}, target: {winCount: 2, requiredStrokes: 2}}
`, nil)
	m.DismissIntro()

	// 交替地清除和放过目标
	for i := 0; i < 60*60 && !m.Phase().Terminal(); i++ {
		if i%150 == 0 {
			if m.Step().Kind == config.StepKindCircularMotion {
				rubOver(m, 2)
			} else {
				strokeOver(m, 2)
			}
		}
		m.Update(frame)
	}
	if m.Phase() != PhaseComplete {
		t.Fatalf("expected the game to finish, got %s", m.Phase())
	}

	active := map[uint64]bool{}
	lastStep := 0
	for _, ev := range r.events {
		if ev.Step < lastStep {
			t.Fatalf("step index decreased: %+v", ev)
		}
		lastStep = ev.Step
		switch ev.Kind {
		case EventTargetSpawn:
			active[uint64(ev.Target)] = true
			if len(active) > 1 {
				t.Fatalf("more than one active target at %v", ev.T)
			}
		case EventTargetSuccess, EventTargetFailed:
			delete(active, uint64(ev.Target))
		case EventStepEnter:
			if len(active) != 0 {
				t.Fatalf("target still active when entering step %d", ev.Step)
			}
		}
	}
}

func TestMistakesNeverDecrease(t *testing.T) {
	m, _ := newTestMachine(t, `
id: g
slot: 1
steps:
  - kind: dragToTarget
    source: {x: 0, y: 0, w: 0.2, h: 0.2}
    drop: {x: 0.8, y: 0.8, w: 0.2, h: 0.2}
    wrongDrops: [{x: 0.8, y: 0, w: 0.2, h: 0.2}]
  - kind: directionalStroke
`, nil)
	m.DismissIntro()
	last := 0
	check := func() {
		if got := m.Session().MistakeCount; got < last {
			t.Fatalf("mistakes decreased from %d to %d", last, got)
		} else {
			last = got
		}
	}
	dragTo(m, types.Point{X: 40, Y: 40}, types.Point{X: 360, Y: 40})
	check()
	dragTo(m, types.Point{X: 40, Y: 40}, types.Point{X: 360, Y: 360})
	check()
	for i := 0; i < 20; i++ {
		run(m, 1)
		check()
	}
	if last < 2 {
		t.Errorf("expected mistakes from the drop and expired targets, got %d", last)
	}
}
