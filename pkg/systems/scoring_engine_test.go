package systems

import (
	"testing"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
)

func perStepConfig(points float64) config.ScoringConfig {
	return config.ScoringConfig{
		Strategy:   config.ScoringPerStep,
		StepPoints: points,
		Penalties:  []float64{7, 5, 3},
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name  string
		raw   float64
		score int
		tier  Tier
	}{
		{"满分", 100, 100, TierExcellent},
		{"优秀分数线", 75, 75, TierExcellent},
		{"四舍五入进入优秀", 74.5, 75, TierExcellent},
		{"良好上限", 74.4, 74, TierGood},
		{"良好分数线", 50, 50, TierGood},
		{"较差", 49.4, 49, TierPoor},
		{"负数被限制为0", -12, 0, TierPoor},
		{"超过100被限制", 130, 100, TierExcellent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScore(tt.raw); got != tt.score {
				t.Errorf("NormalizeScore(%v) = %d, want %d", tt.raw, got, tt.score)
			}
			if got := TierFor(tt.raw); got != tt.tier {
				t.Errorf("TierFor(%v) = %s, want %s", tt.raw, got, tt.tier)
			}
		})
	}
}

func TestTierPresentation(t *testing.T) {
	if TierExcellent.ColorHex() != "#27ae60" || TierGood.ColorHex() != "#f1c40f" || TierPoor.ColorHex() != "#e74c3c" {
		t.Error("unexpected tier colors")
	}
	if TierGood.Label() != "Good" {
		t.Errorf("expected label Good, got %s", TierGood.Label())
	}
}

func TestPerStepScoring(t *testing.T) {
	t.Run("五步每步20分无错误得满分", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(perStepConfig(20), session)
		for i := 0; i < 5; i++ {
			e.OnStepEnter()
			e.OnStepCleared()
		}
		result := e.Finalize()
		if result.Score != 100 || result.Tier != TierExcellent {
			t.Errorf("expected 100 Excellent, got %d %s", result.Score, result.Tier)
		}
	})

	t.Run("同一步骤内扣分递减", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(perStepConfig(50), session)
		e.AddStepPoints(50)
		e.OnStepEnter()
		got := []float64{e.RecordWrongAction(), e.RecordWrongAction(), e.RecordWrongAction(), e.RecordWrongAction()}
		want := []float64{7, 5, 3, 3}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("penalty %d: expected %v, got %v", i, want[i], got[i])
			}
		}
		if session.Score != 50-18 {
			t.Errorf("expected score 32, got %v", session.Score)
		}
		if session.MistakeCount != 4 {
			t.Errorf("expected 4 mistakes, got %d", session.MistakeCount)
		}
	})

	t.Run("进入新步骤后重新从第一档扣分", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(perStepConfig(50), session)
		e.AddStepPoints(100)
		e.RecordWrongAction()
		e.RecordWrongAction()
		e.OnStepEnter()
		if p := e.RecordWrongAction(); p != 7 {
			t.Errorf("expected first-tier penalty after step enter, got %v", p)
		}
		if session.MistakeCount != 3 {
			t.Errorf("mistakes are cumulative across steps, got %d", session.MistakeCount)
		}
	})

	t.Run("扣分后分数不低于0", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(perStepConfig(20), session)
		e.AddStepPoints(4)
		e.RecordWrongAction()
		if session.Score != 0 {
			t.Errorf("expected floor at 0, got %v", session.Score)
		}
		e.OnStepCleared()
		if session.Score != 20 {
			t.Errorf("expected 20 after the floor, got %v", session.Score)
		}
	})

	t.Run("超时计为错误操作", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(perStepConfig(20), session)
		e.AddStepPoints(20)
		if p := e.RecordMissedTarget(); p != 7 {
			t.Errorf("expected missed target to cost 7, got %v", p)
		}
		if session.Misses != 1 || session.MistakeCount != 1 {
			t.Errorf("expected 1 miss and 1 mistake, got %d %d", session.Misses, session.MistakeCount)
		}
	})

	t.Run("提示不扣分", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(perStepConfig(20), session)
		if p := e.RecordHint(); p != 0 || session.HintsUsed != 1 {
			t.Errorf("expected free hint, got penalty %v hints %d", p, session.HintsUsed)
		}
	})
}

func TestTimeBonusScoring(t *testing.T) {
	cfg := config.ScoringConfig{
		Strategy:         config.ScoringTimeBonus,
		Base:             60,
		CountdownSeconds: 100,
		BonusPerSecond:   0.4,
		WrongToolPenalty: 5,
		HintPenalty:      3,
		MissPenalty:      2,
	}

	t.Run("剩余时间奖励按整秒计算", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(cfg, session)
		e.Advance(40.5)
		result := e.Finalize()
		// 剩余 59.5 秒，按 59 秒计算：60 + 23.6 = 83.6
		if result.Score != 84 || result.Tier != TierExcellent {
			t.Errorf("expected 84 Excellent, got %d %s", result.Score, result.Tier)
		}
	})

	t.Run("各类扣分", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(cfg, session)
		e.RecordWrongAction()
		e.RecordHint()
		e.RecordMissedTarget()
		e.Advance(100)
		result := e.Finalize()
		if result.Score != 50 {
			t.Errorf("expected 60-5-3-2 = 50, got %d", result.Score)
		}
		if result.Mistakes != 2 {
			t.Errorf("expected wrong tool and miss to be mistakes, got %d", result.Mistakes)
		}
	})

	t.Run("倒计时结束后没有奖励", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(cfg, session)
		e.Advance(500)
		if e.Remaining() != 0 {
			t.Errorf("expected no remaining time, got %v", e.Remaining())
		}
		if r := e.Finalize(); r.Score != 60 || r.Tier != TierGood {
			t.Errorf("expected 60 Good, got %d %s", r.Score, r.Tier)
		}
	})

	t.Run("结果限制在100以内", func(t *testing.T) {
		session := &components.GameSession{}
		e := NewScoringEngine(cfg, session)
		r := e.Finalize()
		if r.Score != 100 {
			t.Errorf("expected clamp to 100, got %d (raw %v)", r.Score, r.Raw)
		}
	})
}
