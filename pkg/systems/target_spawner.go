package systems

import (
	"math"
	"math/rand"
	"time"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/ecs"
	"github.com/jermochi/Hygin/pkg/mask"
	"github.com/jermochi/Hygin/pkg/types"
	"github.com/rs/zerolog/log"
)

// 目标生成位置来源
const (
	SpawnSourceMask   = "mask"
	SpawnSourceAnchor = "anchor"
	SpawnSourceBand   = "band"
)

// SpawnerHooks 目标生命周期回调
// 所有回调都在调度器推进或笔画输入期间同步调用
type SpawnerHooks struct {
	// OnSpawn 新目标生成
	OnSpawn func(id ecs.EntityID)
	// OnSuccess 目标被清除，count 为本步骤已清除数
	OnSuccess func(id ecs.EntityID, count int)
	// OnFailure 目标超时失败，返回 true 表示达到失败上限，停止生成
	OnFailure func(id ecs.EntityID) (halt bool)
	// OnRemoved 目标展示结束并被移除
	OnRemoved func(id ecs.EntityID)
	// OnWinCountReached 最后一个目标移除后，本步骤的清除数达标
	OnWinCountReached func()
}

// TargetSpawner 管理单个步骤内目标的生成、计时、清除与失败
//
// 同一时刻最多一个 status=active 的目标。
// 所有定时回调都携带登记时的代数与目标ID，触发时不匹配即为空操作。
type TargetSpawner struct {
	em     *ecs.EntityManager
	timers *TimerScheduler
	rng    *rand.Rand
	hooks  SpawnerHooks

	step     *config.StepConfig
	mask     *mask.PixelMask
	region   types.Rect // 步骤区域（像素）
	fallback types.Rect // 几何生成带（像素）

	generation   uint64
	current      ecs.EntityID // 正在展示的目标（active/success/failed），0 表示没有
	successCount int
	halted       bool
	begun        bool

	failureTimer TimerHandle
	handles      map[TimerHandle]struct{}
}

// NewTargetSpawner 创建目标生成器
func NewTargetSpawner(em *ecs.EntityManager, timers *TimerScheduler, rng *rand.Rand, hooks SpawnerHooks) *TargetSpawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TargetSpawner{
		em:      em,
		timers:  timers,
		rng:     rng,
		hooks:   hooks,
		handles: make(map[TimerHandle]struct{}),
	}
}

// Begin 进入一个生成目标的步骤
//
// 参数:
//   - step: 步骤配置
//   - m: 像素遮罩，nil 表示不可用（使用锚点或几何生成带）
//   - reference: 参考区域（像素），步骤中的比例坐标都相对它
func (s *TargetSpawner) Begin(step *config.StepConfig, m *mask.PixelMask, reference types.Rect) {
	s.Reset()
	s.step = step
	s.mask = m
	s.region = step.Region.Denormalize(reference)
	s.fallback = step.Fallback.Denormalize(reference)
	s.begun = true
}

// Reset 同步取消全部定时器并移除目标
func (s *TargetSpawner) Reset() {
	for h := range s.handles {
		s.timers.Cancel(h)
	}
	s.handles = make(map[TimerHandle]struct{})
	s.failureTimer = 0
	if s.current != 0 {
		s.em.DestroyEntityNow(s.current)
	}
	s.current = 0
	s.successCount = 0
	s.halted = false
	s.begun = false
	s.generation++
}

// Halt 停止生成新目标（保留当前目标的展示）
func (s *TargetSpawner) Halt() {
	s.halted = true
	s.cancelFailureTimer()
}

// Halted 是否已停止生成
func (s *TargetSpawner) Halted() bool {
	return s.halted
}

// SuccessCount 本步骤已清除的目标数
func (s *TargetSpawner) SuccessCount() int {
	return s.successCount
}

// Region 当前步骤区域（像素）
func (s *TargetSpawner) Region() types.Rect {
	return s.region
}

// Mask 当前步骤的遮罩（可能为 nil）
func (s *TargetSpawner) Mask() *mask.PixelMask {
	return s.mask
}

// Current 正在展示的目标（任意状态）
func (s *TargetSpawner) Current() (ecs.EntityID, *components.TargetComponent, bool) {
	if s.current == 0 {
		return 0, nil, false
	}
	t, ok := ecs.GetComponent[*components.TargetComponent](s.em, s.current)
	if !ok {
		return 0, nil, false
	}
	return s.current, t, true
}

// ActiveTarget 返回 status=active 的目标
func (s *TargetSpawner) ActiveTarget() (ecs.EntityID, *components.TargetComponent, bool) {
	id, t, ok := s.Current()
	if !ok || t.Status != components.TargetActive {
		return 0, nil, false
	}
	return id, t, true
}

// TrySpawn 在没有目标且清除数未达标时生成一个新目标
func (s *TargetSpawner) TrySpawn() (ecs.EntityID, bool) {
	if !s.begun || s.halted || s.current != 0 {
		return 0, false
	}
	if s.successCount >= s.step.Target.WinCount {
		return 0, false
	}

	pos, norm, source := s.place()
	tc := s.step.Target
	id := s.em.CreateEntity()
	ecs.AddComponent(s.em, id, &components.TargetComponent{
		Position:   pos,
		Norm:       norm,
		Radius:     tc.Radius,
		Required:   tc.RequiredStrokes,
		Progress:   1,
		Status:     components.TargetActive,
		SpawnedAt:  s.timers.Now(),
		Generation: s.generation,
		Source:     source,
	})
	s.current = id

	gen := s.generation
	s.failureTimer = s.schedule(tc.FailureWindow, func() { s.expire(gen, id) })

	log.Debug().Str("component", "TargetSpawner").
		Uint64("target", uint64(id)).Str("source", source).
		Float64("x", pos.X).Float64("y", pos.Y).Msg("target spawned")

	if s.hooks.OnSpawn != nil {
		s.hooks.OnSpawn(id)
	}
	return id, true
}

// OnStrokeUnit 将一个笔画单元计入当前活跃目标
// 返回是否计入（没有活跃目标时返回 false）
func (s *TargetSpawner) OnStrokeUnit() bool {
	id, t, ok := s.ActiveTarget()
	if !ok {
		return false
	}

	t.Received++
	if t.Received >= t.Required {
		t.Received = t.Required
		t.Progress = 0
		s.succeed(id, t)
		return true
	}
	t.Progress = float64(t.Required-t.Received) / float64(t.Required)
	return true
}

// Tick 兜底的超时检查：活跃目标超过失败时限时判定失败
func (s *TargetSpawner) Tick(now float64) {
	id, t, ok := s.ActiveTarget()
	if !ok {
		return
	}
	if now-t.SpawnedAt > s.step.Target.FailureWindow+timerEpsilon {
		s.expire(s.generation, id)
	}
}

func (s *TargetSpawner) succeed(id ecs.EntityID, t *components.TargetComponent) {
	s.cancelFailureTimer()
	t.Status = components.TargetSuccess
	s.successCount++

	log.Debug().Str("component", "TargetSpawner").
		Uint64("target", uint64(id)).Int("cleared", s.successCount).Msg("target cleared")

	gen := s.generation
	if s.hooks.OnSuccess != nil {
		s.hooks.OnSuccess(id, s.successCount)
	}
	if gen != s.generation {
		return
	}

	s.schedule(s.step.Target.SuccessClearDelay, func() {
		if !s.remove(gen, id) {
			return
		}
		if s.successCount >= s.step.Target.WinCount {
			if s.hooks.OnWinCountReached != nil {
				s.hooks.OnWinCountReached()
			}
			return
		}
		s.scheduleNextSpawn(gen)
	})
}

// expire 失败定时器回调
func (s *TargetSpawner) expire(gen uint64, id ecs.EntityID) {
	if gen != s.generation || id != s.current {
		return
	}
	t, ok := ecs.GetComponent[*components.TargetComponent](s.em, id)
	if !ok || t.Status != components.TargetActive {
		return
	}
	s.cancelFailureTimer()
	t.Status = components.TargetFailed

	log.Debug().Str("component", "TargetSpawner").Uint64("target", uint64(id)).Msg("target failed")

	halt := false
	if s.hooks.OnFailure != nil {
		halt = s.hooks.OnFailure(id)
	}
	// 回调可能已经重置了生成器
	if gen != s.generation {
		return
	}
	if halt {
		s.halted = true
		return
	}

	s.schedule(s.step.Target.FailureClearDelay, func() {
		if s.remove(gen, id) {
			s.scheduleNextSpawn(gen)
		}
	})
}

func (s *TargetSpawner) scheduleNextSpawn(gen uint64) {
	s.schedule(s.step.Target.NextSpawnDelay, func() {
		if gen == s.generation {
			s.TrySpawn()
		}
	})
}

// remove 移除展示结束的目标，代数或ID不匹配时返回 false
func (s *TargetSpawner) remove(gen uint64, id ecs.EntityID) bool {
	if gen != s.generation || id != s.current {
		return false
	}
	s.em.DestroyEntityNow(id)
	s.current = 0
	if s.hooks.OnRemoved != nil {
		s.hooks.OnRemoved(id)
	}
	return gen == s.generation
}

// schedule 登记一个由生成器持有的定时器，Reset 时统一取消
func (s *TargetSpawner) schedule(delay float64, fn func()) TimerHandle {
	var h TimerHandle
	h = s.timers.After(delay, func() {
		delete(s.handles, h)
		fn()
	})
	s.handles[h] = struct{}{}
	return h
}

func (s *TargetSpawner) cancelFailureTimer() {
	if s.failureTimer != 0 {
		s.timers.Cancel(s.failureTimer)
		delete(s.handles, s.failureTimer)
		s.failureTimer = 0
	}
}

// place 选择生成位置
// 依次尝试：遮罩候选点（带边距检查）→ 手动锚点加抖动 → 几何生成带
func (s *TargetSpawner) place() (types.Point, types.Point, string) {
	mc := s.step.Mask
	if s.mask != nil && mc != nil {
		candidates := s.mask.PointsInBand(mc.BandMinY, mc.BandMaxY)
		if len(candidates) > 0 {
			for i := 0; i < s.step.Target.SpawnRetries; i++ {
				p := candidates[s.rng.Intn(len(candidates))]
				if s.mask.CoveredAround(p, mc.Margin) {
					return s.region.DenormalizePoint(p), p, SpawnSourceMask
				}
			}
		}
	}

	if mc != nil && len(mc.Anchors) > 0 {
		a := mc.Anchors[s.rng.Intn(len(mc.Anchors))]
		j := s.step.Target.Jitter
		a.X = clamp01(a.X + (s.rng.Float64()*2-1)*j)
		a.Y = clamp01(a.Y + (s.rng.Float64()*2-1)*j)
		return s.region.DenormalizePoint(a), a, SpawnSourceAnchor
	}

	band := s.fallback
	if band.IsEmpty() {
		band = s.region
	}
	// 尽量让目标完整落在生成带内
	r := s.step.Target.Radius
	inner := band
	if band.W > 2*r && band.H > 2*r {
		inner = types.Rect{X: band.X + r, Y: band.Y + r, W: band.W - 2*r, H: band.H - 2*r}
	}
	pos := types.Point{
		X: inner.X + s.rng.Float64()*inner.W,
		Y: inner.Y + s.rng.Float64()*inner.H,
	}
	norm, _ := s.region.NormalizePoint(pos.X, pos.Y)
	return pos, norm, SpawnSourceBand
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
