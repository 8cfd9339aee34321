package systems

import (
	"math"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/rs/zerolog/log"
)

// Tier 分数等级
type Tier int

const (
	TierPoor Tier = iota
	TierGood
	TierExcellent
)

// 等级分数线
const (
	TierGoodMin      = 50
	TierExcellentMin = 75
)

// Label 显示文本
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierGood:
		return "Good"
	}
	return "Poor"
}

// ColorHex 等级颜色
func (t Tier) ColorHex() string {
	switch t {
	case TierExcellent:
		return "#27ae60"
	case TierGood:
		return "#f1c40f"
	}
	return "#e74c3c"
}

func (t Tier) String() string {
	return t.Label()
}

// NormalizeScore 四舍五入并限制在 [0, 100]
func NormalizeScore(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(raw))))
}

// TierFor 返回分数对应的等级（先归一化）
func TierFor(raw float64) Tier {
	score := NormalizeScore(raw)
	switch {
	case score >= TierExcellentMin:
		return TierExcellent
	case score >= TierGoodMin:
		return TierGood
	}
	return TierPoor
}

// ScoreResult 最终结果
type ScoreResult struct {
	Score     int     // 归一化后的分数 0~100
	Raw       float64 // 未归一化的原始分数
	Tier      Tier
	Remaining float64 // 倒计时剩余秒数（仅 timeBonus）
	Mistakes  int
}

// ScoringEngine 计分引擎
//
// 只读写 GameSession 的 Score 与 MistakeCount。
// perStep：Score 从 0 开始累加步骤分，同一步骤内连续错误按 penalties 递减扣分；
// timeBonus：Score 从 base 开始只做扣分，结算时加上剩余整秒 × bonusPerSecond。
// 每次扣分后 Score 都不低于 0。
type ScoringEngine struct {
	cfg     config.ScoringConfig
	session *components.GameSession

	consecutive int     // 当前步骤内的连续错误次数
	elapsed     float64 // 倒计时已用时间（秒）
}

// NewScoringEngine 创建计分引擎并初始化会话分数
func NewScoringEngine(cfg config.ScoringConfig, session *components.GameSession) *ScoringEngine {
	e := &ScoringEngine{cfg: cfg, session: session}
	e.Reset()
	return e
}

// Reset 重新开始计分
func (e *ScoringEngine) Reset() {
	e.consecutive = 0
	e.elapsed = 0
	if e.cfg.Strategy == config.ScoringTimeBonus {
		e.session.Score = e.cfg.Base
	} else {
		e.session.Score = 0
	}
}

// Strategy 计分策略
func (e *ScoringEngine) Strategy() config.ScoringStrategy {
	return e.cfg.Strategy
}

// OnStepEnter 进入新步骤，连续错误计数清零
func (e *ScoringEngine) OnStepEnter() {
	e.consecutive = 0
}

// AddStepPoints 增加分数
func (e *ScoringEngine) AddStepPoints(points float64) {
	e.session.Score += points
}

// OnStepCleared 步骤完成，perStep 策略增加一个步骤的分值
func (e *ScoringEngine) OnStepCleared() {
	if e.cfg.Strategy == config.ScoringPerStep {
		e.AddStepPoints(e.cfg.StepPoints)
	}
}

// AddPenalty 扣分，分数不低于 0
func (e *ScoringEngine) AddPenalty(amount float64) {
	if amount <= 0 {
		return
	}
	e.session.Score = math.Max(0, e.session.Score-amount)
}

// RecordWrongAction 记录一次错误操作（错误拖放、错误选项、错误工具）
// 返回本次扣分
func (e *ScoringEngine) RecordWrongAction() float64 {
	e.session.MistakeCount++
	var amount float64
	if e.cfg.Strategy == config.ScoringTimeBonus {
		amount = e.cfg.WrongToolPenalty
	} else {
		amount = e.escalatingPenalty()
	}
	e.AddPenalty(amount)
	log.Debug().Str("component", "ScoringEngine").
		Float64("penalty", amount).Int("mistakes", e.session.MistakeCount).Msg("wrong action")
	return amount
}

// RecordMissedTarget 记录一个超时失败的目标
// perStep 策略下与错误操作相同
func (e *ScoringEngine) RecordMissedTarget() float64 {
	if e.cfg.Strategy != config.ScoringTimeBonus {
		e.session.Misses++
		return e.RecordWrongAction()
	}
	e.session.MistakeCount++
	e.session.Misses++
	e.AddPenalty(e.cfg.MissPenalty)
	return e.cfg.MissPenalty
}

// RecordHint 记录一次提示（只有 timeBonus 扣分）
func (e *ScoringEngine) RecordHint() float64 {
	e.session.HintsUsed++
	if e.cfg.Strategy != config.ScoringTimeBonus {
		return 0
	}
	e.AddPenalty(e.cfg.HintPenalty)
	return e.cfg.HintPenalty
}

func (e *ScoringEngine) escalatingPenalty() float64 {
	p := e.cfg.Penalties
	if len(p) == 0 {
		return 0
	}
	i := e.consecutive
	if i >= len(p) {
		i = len(p) - 1
	}
	e.consecutive++
	return p[i]
}

// Advance 推进倒计时
func (e *ScoringEngine) Advance(dt float64) {
	if e.cfg.Strategy == config.ScoringTimeBonus && dt > 0 {
		e.elapsed += dt
	}
}

// Remaining 倒计时剩余秒数
func (e *ScoringEngine) Remaining() float64 {
	if e.cfg.Strategy != config.ScoringTimeBonus {
		return 0
	}
	return math.Max(0, e.cfg.CountdownSeconds-e.elapsed)
}

// Current 当前（未结算的）分数
func (e *ScoringEngine) Current() float64 {
	return e.session.Score
}

// Finalize 结算最终分数
func (e *ScoringEngine) Finalize() ScoreResult {
	raw := e.session.Score
	remaining := e.Remaining()
	if e.cfg.Strategy == config.ScoringTimeBonus {
		raw += math.Floor(remaining) * e.cfg.BonusPerSecond
	}
	result := ScoreResult{
		Score:     NormalizeScore(raw),
		Raw:       raw,
		Tier:      TierFor(raw),
		Remaining: remaining,
		Mistakes:  e.session.MistakeCount,
	}
	log.Info().Str("component", "ScoringEngine").
		Int("score", result.Score).Str("tier", result.Tier.Label()).Msg("score finalized")
	return result
}
