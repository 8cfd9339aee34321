package systems

import (
	"math/rand"
	"time"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/ecs"
	"github.com/jermochi/Hygin/pkg/mask"
	"github.com/jermochi/Hygin/pkg/types"
	"github.com/rs/zerolog/log"
)

// Phase 状态机的元状态
type Phase int

const (
	// PhaseIntro 开场说明，点击后进入第一个步骤
	PhaseIntro Phase = iota
	// PhaseHintShown 手势步骤开始前的强制提示，不可交互
	PhaseHintShown
	// PhaseActive 可交互
	PhaseActive
	// PhaseStepCleared 步骤已完成，等待进入下一步骤
	PhaseStepCleared
	// PhaseComplete 全部步骤完成
	PhaseComplete
	// PhaseLose 错误数达到上限
	PhaseLose
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseHintShown:
		return "hintShown"
	case PhaseActive:
		return "active"
	case PhaseStepCleared:
		return "stepCleared"
	case PhaseComplete:
		return "complete"
	case PhaseLose:
		return "lose"
	}
	return "unknown"
}

// Terminal 是否为终止状态
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseLose
}

// 引擎派发的通用音效
const (
	CueTargetSuccess = "target_success"
	CueTargetFailed  = "target_failed"
	CueWrong         = "wrong"
	CueGameComplete  = "game_complete"
	CueGameLose      = "game_lose"
)

// EventKind 状态机事件类型（用于事件日志与校验工具）
type EventKind string

const (
	EventStepEnter     EventKind = "stepEnter"
	EventActive        EventKind = "active"
	EventTargetSpawn   EventKind = "targetSpawn"
	EventStrokeUnit    EventKind = "strokeUnit"
	EventTargetSuccess EventKind = "targetSuccess"
	EventTargetFailed  EventKind = "targetFailed"
	EventTargetRemoved EventKind = "targetRemoved"
	EventWrongAction   EventKind = "wrongAction"
	EventHint          EventKind = "hint"
	EventStepComplete  EventKind = "stepComplete"
	EventLose          EventKind = "lose"
	EventComplete      EventKind = "complete"
	EventRetry         EventKind = "retry"
)

// Event 状态机事件
type Event struct {
	Kind   EventKind
	T      float64
	Step   int
	Target ecs.EntityID
}

// MaskProvider 提供步骤的像素遮罩
// ready=false 表示仍在解码；ready=true 且 m=nil 表示不可用（使用回退生成带）
type MaskProvider interface {
	Mask(stepIndex int) (m *mask.PixelMask, ready bool)
}

// MachineHooks 状态机对外的回调
type MachineHooks struct {
	OnCue      func(cue config.CueConfig)
	OnPhase    func(from, to Phase)
	OnEvent    func(ev Event)
	OnComplete func(result ScoreResult)
	OnLose     func()
}

// MachineOptions 状态机依赖
type MachineOptions struct {
	Masks MaskProvider
	Rand  *rand.Rand
	Hooks MachineHooks
}

// ChoiceState 选择步骤中一个选项的显示状态
type ChoiceState struct {
	Text    string
	Region  types.Rect // 比例坐标
	Correct bool
	Wrong   bool // 已被选错（保持标记）
}

// StepStateMachine 单个小游戏的步骤状态机
//
// 所有时间都来自内部的 TimerScheduler，由 Update(dt) 推进。
// 每次进入步骤、失败或重置都会递增代数并同步取消本状态机登记的定时器，
// 过期的回调在触发时比对代数，不一致即为空操作。
type StepStateMachine struct {
	def   *config.GameDefinition
	masks MaskProvider
	rng   *rand.Rand
	hooks MachineHooks

	em      *ecs.EntityManager
	timers  *TimerScheduler
	tracker *GestureTracker
	spawner *TargetSpawner
	scoring *ScoringEngine
	session *components.GameSession

	phase     Phase
	reference types.Rect // 参考区域（像素），为空表示布局未就绪
	handles   map[TimerHandle]struct{}

	drag         *components.DragSession
	selectedTool string
	choices      []ChoiceState
	resolved     bool // 当前步骤已完成（拖放/选择）

	hintDone       bool
	hintVisibleEnd float64
	result         ScoreResult
}

// NewStepStateMachine 创建状态机，初始处于 Intro
func NewStepStateMachine(def *config.GameDefinition, opts MachineOptions) *StepStateMachine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &StepStateMachine{
		def:     def,
		masks:   opts.Masks,
		rng:     rng,
		hooks:   opts.Hooks,
		em:      ecs.NewEntityManager(),
		timers:  NewTimerScheduler(),
		session: &components.GameSession{GameID: def.ID},
		handles: make(map[TimerHandle]struct{}),
	}
	m.tracker = NewGestureTracker(TrackerConfig{})
	m.scoring = NewScoringEngine(def.Scoring, m.session)
	m.spawner = NewTargetSpawner(m.em, m.timers, rng, SpawnerHooks{
		OnSpawn:           m.onTargetSpawn,
		OnSuccess:         m.onTargetSuccess,
		OnFailure:         m.onTargetFailure,
		OnRemoved:         m.onTargetRemoved,
		OnWinCountReached: m.onWinCountReached,
	})
	return m
}

// Begin 开始新的一局（回到 Intro）
func (m *StepStateMachine) Begin() {
	m.resetAll()
	m.setPhase(PhaseIntro)
}

// Retry 玩家主动重来：完全重置会话
func (m *StepStateMachine) Retry() {
	m.emit(EventRetry, 0)
	m.Begin()
}

// DismissIntro 关闭开场说明，进入第一个步骤
func (m *StepStateMachine) DismissIntro() {
	if m.phase != PhaseIntro {
		return
	}
	m.enterStep(0)
}

// SetLayout 设置参考区域（像素）
// 布局变化时已生成的目标保持原位，新的目标按新布局生成
func (m *StepStateMachine) SetLayout(reference types.Rect) {
	m.reference = reference
}

// Update 推进时间
func (m *StepStateMachine) Update(dt float64) {
	if m.phase.Terminal() {
		return
	}
	if m.phase != PhaseIntro {
		m.scoring.Advance(dt)
	}
	m.timers.Advance(dt)
	m.spawner.Tick(m.timers.Now())

	if m.phase == PhaseHintShown && m.hintDone {
		m.tryActivate()
	}
}

// ---- 查询 ----

// Phase 当前元状态
func (m *StepStateMachine) Phase() Phase { return m.phase }

// Session 当前会话（只读使用）
func (m *StepStateMachine) Session() *components.GameSession { return m.session }

// Definition 游戏定义
func (m *StepStateMachine) Definition() *config.GameDefinition { return m.def }

// StepIndex 当前步骤下标
func (m *StepStateMachine) StepIndex() int { return m.session.CurrentStepIndex }

// Step 当前步骤配置
func (m *StepStateMachine) Step() *config.StepConfig {
	return &m.def.Steps[m.session.CurrentStepIndex]
}

// Now 状态机时间（秒）
func (m *StepStateMachine) Now() float64 { return m.timers.Now() }

// Target 正在展示的目标
func (m *StepStateMachine) Target() (ecs.EntityID, *components.TargetComponent, bool) {
	return m.spawner.Current()
}

// Drag 当前拖拽会话（没有时为 nil）
func (m *StepStateMachine) Drag() *components.DragSession { return m.drag }

// Choices 当前选择步骤的选项
func (m *StepStateMachine) Choices() []ChoiceState { return m.choices }

// SelectedTool 当前选中的工具
func (m *StepStateMachine) SelectedTool() string { return m.selectedTool }

// HintVisible 玩家请求的提示是否正在显示
func (m *StepStateMachine) HintVisible() bool {
	return m.timers.Now() < m.hintVisibleEnd
}

// Remaining 倒计时剩余秒数（timeBonus 策略）
func (m *StepStateMachine) Remaining() float64 { return m.scoring.Remaining() }

// CurrentScore 当前未结算分数
func (m *StepStateMachine) CurrentScore() float64 { return m.scoring.Current() }

// Result 最终结果（只在 Complete 后有效）
func (m *StepStateMachine) Result() ScoreResult { return m.result }

// Region 当前步骤的活动区域（像素）
func (m *StepStateMachine) Region() types.Rect {
	return m.Step().Region.Denormalize(m.reference)
}

// ---- 输入 ----

// PointerDown 指针按下
func (m *StepStateMachine) PointerDown(s GestureSample) {
	if m.phase == PhaseIntro {
		m.DismissIntro()
		return
	}
	if m.phase != PhaseActive || m.reference.IsEmpty() {
		return
	}

	p := s.Point()
	m.drag = &components.DragSession{Origin: p, Current: p, StartedAt: s.T}

	step := m.Step()
	switch {
	case step.Kind.RequiresGesture():
		if m.toolReady() {
			m.tracker.OnPointerDown(s)
		}
	case step.Kind == config.StepKindDragToTarget:
		src := step.Source.Denormalize(m.reference)
		m.drag.Holding = !m.resolved && m.toolReady() && (src.IsEmpty() || src.Contains(p.X, p.Y))
	case step.Kind == config.StepKindChoice:
		for i, c := range m.choices {
			if c.Region.Denormalize(m.reference).Contains(p.X, p.Y) {
				m.SelectChoice(i)
				break
			}
		}
	}
}

// PointerMove 指针移动
func (m *StepStateMachine) PointerMove(s GestureSample) {
	if m.drag == nil {
		return
	}
	m.drag.Current = s.Point()
	if m.phase != PhaseActive || !m.Step().Kind.RequiresGesture() {
		return
	}

	gate := GestureGate{Region: m.Region(), Mask: m.spawner.Mask()}
	if _, t, ok := m.spawner.ActiveTarget(); ok {
		gate.TargetActive = true
		gate.Target = t.Position
		gate.HitRadius = t.Radius + m.Step().Gesture.HitExpand
	}
	ev, ok := m.tracker.OnPointerMove(s, gate)
	if !ok {
		return
	}
	id, _, _ := m.spawner.ActiveTarget()
	if m.spawner.OnStrokeUnit() {
		m.emitAt(EventStrokeUnit, id, ev.T)
	}
}

// PointerUp 指针松开
func (m *StepStateMachine) PointerUp(s GestureSample) {
	drag := m.drag
	m.drag = nil
	m.tracker.OnPointerUp()
	if drag == nil || !drag.Holding || m.phase != PhaseActive {
		return
	}

	step := m.Step()
	if step.Kind != config.StepKindDragToTarget || m.resolved {
		return
	}
	p := s.Point()
	if step.Drop.Denormalize(m.reference).Contains(p.X, p.Y) {
		m.resolved = true
		m.completeStep()
		return
	}
	for _, wrong := range step.WrongDrops {
		if wrong.Denormalize(m.reference).Contains(p.X, p.Y) {
			m.wrongAction()
			return
		}
	}
}

// Close 组件销毁：取消全部定时器与待生成的目标
func (m *StepStateMachine) Close() {
	m.cancelTimers()
	m.spawner.Reset()
	m.tracker.Reset()
	m.drag = nil
}

// CancelDrag 结束拖拽会话但不作为一次松开处理
func (m *StepStateMachine) CancelDrag() {
	m.drag = nil
	m.tracker.OnPointerUp()
}

// SelectTool 在工具栏中选择工具，返回是否为当前步骤需要的工具
func (m *StepStateMachine) SelectTool(id string) bool {
	if !m.def.RequireTool || m.phase.Terminal() || m.phase == PhaseIntro {
		return false
	}
	// 步骤已完成、等待进入下一步：只记录选择，不计错误，进入下一步后由 toolReady 判定
	if m.phase == PhaseStepCleared {
		m.selectedTool = id
		next := m.session.CurrentStepIndex + 1
		return next < len(m.def.Steps) && m.def.Steps[next].Tool == id
	}
	want := m.Step().Tool
	if id == want || want == "" {
		m.selectedTool = id
		return true
	}
	if id != m.selectedTool {
		m.selectedTool = id
		m.session.WrongTools++
		m.wrongAction()
	}
	return false
}

// SelectChoice 选择第 i 个选项
func (m *StepStateMachine) SelectChoice(i int) {
	if m.phase != PhaseActive || m.Step().Kind != config.StepKindChoice || m.resolved {
		return
	}
	if i < 0 || i >= len(m.choices) || m.choices[i].Wrong {
		return
	}
	if m.choices[i].Correct {
		m.resolved = true
		m.completeStep()
		return
	}
	m.choices[i].Wrong = true
	m.wrongAction()
}

// UseHint 玩家请求提示
func (m *StepStateMachine) UseHint() {
	if m.phase != PhaseActive && m.phase != PhaseHintShown {
		return
	}
	m.scoring.RecordHint()
	m.hintVisibleEnd = m.timers.Now() + m.def.HintDisplay
	m.emit(EventHint, 0)
}

// ---- 内部流程 ----

func (m *StepStateMachine) resetAll() {
	m.cancelTimers()
	m.spawner.Reset()
	m.tracker.Reset()
	m.em.Clear()
	m.session.Reset()
	m.scoring.Reset()
	m.drag = nil
	m.selectedTool = ""
	m.choices = nil
	m.resolved = false
	m.hintDone = false
	m.hintVisibleEnd = 0
	m.result = ScoreResult{}
}

func (m *StepStateMachine) enterStep(i int) {
	m.cancelTimers()
	m.spawner.Reset()
	m.tracker.Reset()
	m.drag = nil
	m.choices = nil
	m.resolved = false
	m.hintDone = false

	m.session.Generation++
	m.session.CurrentStepIndex = i
	m.session.SuccessCount = 0
	m.scoring.OnStepEnter()

	step := m.Step()
	m.emit(EventStepEnter, 0)
	m.cue(step.OnEnter)
	log.Debug().Str("component", "StepStateMachine").Str("game", m.def.ID).
		Int("step", i).Str("kind", string(step.Kind)).Msg("step entered")

	switch {
	case step.Kind.RequiresGesture():
		m.setPhase(PhaseHintShown)
		m.after(m.def.HintDisplay, func() {
			m.hintDone = true
			m.tryActivate()
		})
	case step.Kind == config.StepKindTransition:
		m.setPhase(PhaseActive)
		m.after(step.Duration, m.completeStep)
	default:
		if step.Kind == config.StepKindChoice {
			m.dealChoices(step)
		}
		m.setPhase(PhaseActive)
		m.emit(EventActive, 0)
	}
}

// tryActivate 提示结束后，等待遮罩与布局就绪再进入 Active
func (m *StepStateMachine) tryActivate() {
	if m.phase != PhaseHintShown || m.reference.IsEmpty() {
		return
	}
	var pm *mask.PixelMask
	if m.Step().Mask != nil && m.masks != nil {
		var ready bool
		pm, ready = m.masks.Mask(m.session.CurrentStepIndex)
		if !ready {
			return
		}
	}

	step := m.Step()
	m.tracker.Configure(TrackerConfigFromStep(step))
	m.spawner.Begin(step, pm, m.reference)
	m.setPhase(PhaseActive)
	m.emit(EventActive, 0)
	m.spawner.TrySpawn()
}

func (m *StepStateMachine) dealChoices(step *config.StepConfig) {
	m.choices = make([]ChoiceState, len(step.Choices))
	order := make([]int, len(step.Choices))
	for i := range order {
		order[i] = i
	}
	if step.Shuffle {
		order = m.rng.Perm(len(step.Choices))
	}
	for i, c := range step.Choices {
		src := step.Choices[order[i]]
		m.choices[i] = ChoiceState{Text: src.Text, Correct: src.Correct, Region: c.Region}
	}
}

func (m *StepStateMachine) completeStep() {
	if m.phase != PhaseActive {
		return
	}
	step := m.Step()
	m.tracker.Reset()
	m.drag = nil
	if step.Kind.Scoring() {
		m.scoring.OnStepCleared()
	}
	m.setPhase(PhaseStepCleared)
	m.emit(EventStepComplete, 0)
	m.cue(step.OnComplete)

	next := func() {
		if m.session.CurrentStepIndex+1 >= len(m.def.Steps) {
			m.finish()
			return
		}
		m.enterStep(m.session.CurrentStepIndex + 1)
	}
	if step.CompleteDelay > 0 {
		m.after(step.CompleteDelay, next)
		return
	}
	next()
}

func (m *StepStateMachine) finish() {
	m.cancelTimers()
	m.spawner.Reset()
	m.session.Finished = true
	m.result = m.scoring.Finalize()
	m.setPhase(PhaseComplete)
	m.emit(EventComplete, 0)
	m.cue(config.CueConfig{Sound: CueGameComplete})
	log.Info().Str("component", "StepStateMachine").Str("game", m.def.ID).
		Int("score", m.result.Score).Int("mistakes", m.session.MistakeCount).Msg("game complete")
	if m.hooks.OnComplete != nil {
		m.hooks.OnComplete(m.result)
	}
}

func (m *StepStateMachine) lose() {
	m.cancelTimers()
	m.spawner.Halt()
	m.tracker.Reset()
	m.drag = nil
	m.session.Finished = true
	m.session.Lost = true
	m.setPhase(PhaseLose)
	m.emit(EventLose, 0)
	m.cue(config.CueConfig{Sound: CueGameLose})
	log.Info().Str("component", "StepStateMachine").Str("game", m.def.ID).
		Int("mistakes", m.session.MistakeCount).Msg("mistake cap reached")
	if m.hooks.OnLose != nil {
		m.hooks.OnLose()
	}
}

// capReached 错误数是否达到失败上限（仅启用失败条件的游戏）
func (m *StepStateMachine) capReached() bool {
	return m.def.Lose.Enabled && m.session.MistakeCount >= m.def.Lose.MistakeCap
}

func (m *StepStateMachine) wrongAction() {
	m.scoring.RecordWrongAction()
	m.emit(EventWrongAction, 0)
	m.cue(config.CueConfig{Sound: CueWrong})
	if m.capReached() {
		m.lose()
	}
}

func (m *StepStateMachine) toolReady() bool {
	if !m.def.RequireTool {
		return true
	}
	want := m.Step().Tool
	return want == "" || m.selectedTool == want
}

// ---- 目标回调 ----

func (m *StepStateMachine) onTargetSpawn(id ecs.EntityID) {
	m.emit(EventTargetSpawn, id)
}

func (m *StepStateMachine) onTargetSuccess(id ecs.EntityID, count int) {
	m.session.SuccessCount = count
	m.emit(EventTargetSuccess, id)
	m.cue(config.CueConfig{Sound: CueTargetSuccess})
}

func (m *StepStateMachine) onTargetFailure(id ecs.EntityID) bool {
	m.scoring.RecordMissedTarget()
	m.emit(EventTargetFailed, id)
	m.cue(config.CueConfig{Sound: CueTargetFailed})
	if m.capReached() {
		m.lose()
		return true
	}
	return false
}

func (m *StepStateMachine) onTargetRemoved(id ecs.EntityID) {
	m.emit(EventTargetRemoved, id)
}

func (m *StepStateMachine) onWinCountReached() {
	m.completeStep()
}

// ---- 工具 ----

// after 登记一个绑定当前代数的定时器
func (m *StepStateMachine) after(delay float64, fn func()) {
	gen := m.session.Generation
	var h TimerHandle
	h = m.timers.After(delay, func() {
		delete(m.handles, h)
		if gen != m.session.Generation {
			return
		}
		fn()
	})
	m.handles[h] = struct{}{}
}

func (m *StepStateMachine) cancelTimers() {
	for h := range m.handles {
		m.timers.Cancel(h)
	}
	m.handles = make(map[TimerHandle]struct{})
}

func (m *StepStateMachine) setPhase(to Phase) {
	from := m.phase
	m.phase = to
	if from != to && m.hooks.OnPhase != nil {
		m.hooks.OnPhase(from, to)
	}
}

func (m *StepStateMachine) emit(kind EventKind, target ecs.EntityID) {
	m.emitAt(kind, target, m.timers.Now())
}

func (m *StepStateMachine) emitAt(kind EventKind, target ecs.EntityID, t float64) {
	if m.hooks.OnEvent != nil {
		m.hooks.OnEvent(Event{Kind: kind, T: t, Step: m.session.CurrentStepIndex, Target: target})
	}
}

func (m *StepStateMachine) cue(c config.CueConfig) {
	if (c.Sound != "" || c.Visual != "") && m.hooks.OnCue != nil {
		m.hooks.OnCue(c)
	}
}
