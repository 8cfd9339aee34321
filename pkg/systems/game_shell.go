package systems

import (
	"context"
	"math/rand"
	"time"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/rs/zerolog/log"
)

// 路由
const (
	RouteHome = "/"
)

// submitTimeout 单次成绩提交的超时时间
const submitTimeout = 10 * time.Second

// ScoreSubmitter 成绩持久化
// 是否覆盖已保存的成绩（只保留最高分）由实现决定
type ScoreSubmitter interface {
	Submit(ctx context.Context, slot int, score int) error
}

// CompletionMarker 本地完成记录
type CompletionMarker interface {
	MarkCompleted(gameID string) error
}

// Navigator 页面跳转
type Navigator interface {
	Navigate(path string)
}

// CueDispatcher 音效/视觉提示派发
type CueDispatcher interface {
	PlayCue(cue config.CueConfig)
}

// GameFlow 跨游戏顺序
type GameFlow interface {
	CompleteGame(gameID string)
	NextRoute(gameID string) string
}

// SubmitStatus 成绩提交状态
type SubmitStatus int

const (
	SubmitIdle SubmitStatus = iota
	SubmitPending
	SubmitOK
	SubmitFailed
	// SubmitSkipped 没有配置成绩存储
	SubmitSkipped
)

func (s SubmitStatus) String() string {
	switch s {
	case SubmitPending:
		return "pending"
	case SubmitOK:
		return "ok"
	case SubmitFailed:
		return "failed"
	case SubmitSkipped:
		return "skipped"
	}
	return "idle"
}

// ShellOptions GameShell 的外部协作者，均可为 nil
type ShellOptions struct {
	Submitter  ScoreSubmitter
	Completion CompletionMarker
	Navigator  Navigator
	Cues       CueDispatcher
	Flow       GameFlow
	Masks      MaskProvider
	Rand       *rand.Rand
	// OnEvent 额外的事件监听（校验工具使用）
	OnEvent func(ev Event)
}

// ShellView 渲染当前步骤所需的状态快照
type ShellView struct {
	GameName     string
	Phase        Phase
	StepIndex    int
	StepCount    int
	Title        string
	Subtitle     string
	Hint         string
	ShowHint     bool
	Score        float64
	Remaining    float64
	Mistakes     int
	MistakeCap   int
	SuccessCount int
	WinCount     int
	Tool         string
	Result       ScoreResult
	Submit       SubmitStatus
}

type submitResult struct {
	attempt int
	err     error
}

// GameShell 单个小游戏的顶层控制器
//
// 持有一个 StepStateMachine，完成时调用成绩提交、完成记录与游戏顺序。
// 成绩提交在后台 goroutine 中执行，结果通过 channel 在 Update 中取回，
// 因此状态机本身始终只在调用 Update 的线程中运行。
type GameShell struct {
	def     *config.GameDefinition
	opts    ShellOptions
	machine *StepStateMachine

	ctx    context.Context
	cancel context.CancelFunc

	status  SubmitStatus
	attempt int
	results chan submitResult
	lastErr error
}

// NewGameShell 创建 GameShell
func NewGameShell(def *config.GameDefinition, opts ShellOptions) *GameShell {
	ctx, cancel := context.WithCancel(context.Background())
	s := &GameShell{
		def:     def,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan submitResult, 4),
	}
	s.machine = NewStepStateMachine(def, MachineOptions{
		Masks: opts.Masks,
		Rand:  opts.Rand,
		Hooks: MachineHooks{
			OnCue:      s.dispatchCue,
			OnEvent:    opts.OnEvent,
			OnComplete: s.onComplete,
			OnLose:     s.onLose,
		},
	})
	return s
}

// Machine 内部状态机（场景渲染使用）
func (s *GameShell) Machine() *StepStateMachine { return s.machine }

// Definition 游戏定义
func (s *GameShell) Definition() *config.GameDefinition { return s.def }

// Start 开始游戏（进入 Intro）
func (s *GameShell) Start() {
	s.status = SubmitIdle
	s.attempt++
	s.lastErr = nil
	s.machine.Begin()
	log.Info().Str("component", "GameShell").Str("game", s.def.ID).Msg("game started")
}

// Update 推进一帧并取回后台提交结果
func (s *GameShell) Update(dt float64) {
	s.drainResults()
	s.machine.Update(dt)
}

// Close 取消进行中的提交与状态机的全部定时器
func (s *GameShell) Close() {
	s.cancel()
	s.machine.Close()
}

// ---- 输入转发 ----

// PointerDown 指针按下
func (s *GameShell) PointerDown(sample GestureSample) { s.machine.PointerDown(sample) }

// PointerMove 指针移动
func (s *GameShell) PointerMove(sample GestureSample) { s.machine.PointerMove(sample) }

// PointerUp 指针松开
func (s *GameShell) PointerUp(sample GestureSample) { s.machine.PointerUp(sample) }

// SelectTool 选择工具
func (s *GameShell) SelectTool(id string) bool { return s.machine.SelectTool(id) }

// SelectChoice 选择选项
func (s *GameShell) SelectChoice(i int) { s.machine.SelectChoice(i) }

// UseHint 请求提示
func (s *GameShell) UseHint() { s.machine.UseHint() }

// ---- 结束画面操作 ----

// SubmitStatus 当前成绩提交状态
func (s *GameShell) SubmitStatus() SubmitStatus { return s.status }

// SubmitError 最近一次提交失败的原因
func (s *GameShell) SubmitError() error { return s.lastErr }

// RetrySubmit 重新提交失败的成绩
func (s *GameShell) RetrySubmit() {
	if s.status != SubmitFailed {
		return
	}
	s.submit(s.machine.Result().Score)
}

// Retry 重新开始本游戏
func (s *GameShell) Retry() {
	s.attempt++
	s.status = SubmitIdle
	s.lastErr = nil
	s.machine.Retry()
}

// GoNext 进入下一个游戏（不等待成绩提交）
func (s *GameShell) GoNext() {
	route := RouteHome
	if s.opts.Flow != nil {
		if next := s.opts.Flow.NextRoute(s.def.ID); next != "" {
			route = next
		}
	}
	s.navigate(route)
}

// GoHome 返回主页
func (s *GameShell) GoHome() {
	s.navigate(RouteHome)
}

// View 渲染快照
func (s *GameShell) View() ShellView {
	m := s.machine
	step := m.Step()
	v := ShellView{
		GameName:     s.def.Name,
		Phase:        m.Phase(),
		StepIndex:    m.StepIndex(),
		StepCount:    len(s.def.Steps),
		Title:        step.Title,
		Subtitle:     step.Subtitle,
		Hint:         step.Hint,
		ShowHint:     m.Phase() == PhaseHintShown || m.HintVisible(),
		Score:        m.CurrentScore(),
		Remaining:    m.Remaining(),
		Mistakes:     m.Session().MistakeCount,
		SuccessCount: m.Session().SuccessCount,
		WinCount:     step.Target.WinCount,
		Tool:         m.SelectedTool(),
		Result:       m.Result(),
		Submit:       s.status,
	}
	if s.def.Lose.Enabled {
		v.MistakeCap = s.def.Lose.MistakeCap
	}
	return v
}

// ---- 内部 ----

func (s *GameShell) onComplete(result ScoreResult) {
	if s.opts.Completion != nil {
		if err := s.opts.Completion.MarkCompleted(s.def.ID); err != nil {
			log.Warn().Err(err).Str("component", "GameShell").Str("game", s.def.ID).Msg("failed to mark game completed")
		}
	}
	if s.opts.Flow != nil {
		s.opts.Flow.CompleteGame(s.def.ID)
	}
	s.submit(result.Score)
}

func (s *GameShell) onLose() {
	log.Info().Str("component", "GameShell").Str("game", s.def.ID).
		Int("mistakes", s.machine.Session().MistakeCount).Msg("game lost")
}

func (s *GameShell) submit(score int) {
	if s.opts.Submitter == nil {
		s.status = SubmitSkipped
		return
	}
	s.status = SubmitPending
	attempt := s.attempt
	submitter, slot := s.opts.Submitter, s.def.Slot
	ctx := s.ctx
	go func() {
		ctx, cancel := context.WithTimeout(ctx, submitTimeout)
		defer cancel()
		err := submitter.Submit(ctx, slot, score)
		select {
		case s.results <- submitResult{attempt: attempt, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *GameShell) drainResults() {
	for {
		select {
		case r := <-s.results:
			if r.attempt != s.attempt || s.status != SubmitPending {
				continue
			}
			if r.err != nil {
				s.status = SubmitFailed
				s.lastErr = r.err
				log.Warn().Err(r.err).Str("component", "GameShell").Str("game", s.def.ID).Msg("score submission failed")
				continue
			}
			s.status = SubmitOK
			s.lastErr = nil
			log.Info().Str("component", "GameShell").Str("game", s.def.ID).Msg("score submitted")
		default:
			return
		}
	}
}

func (s *GameShell) dispatchCue(cue config.CueConfig) {
	if s.opts.Cues != nil {
		s.opts.Cues.PlayCue(cue)
	}
}

func (s *GameShell) navigate(path string) {
	if s.opts.Navigator == nil {
		return
	}
	s.machine.CancelDrag()
	s.opts.Navigator.Navigate(path)
}
