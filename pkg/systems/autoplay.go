package systems

import (
	"math"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/types"
)

// autoplayAmplitudes 刷动幅度候选（MinDelta 的倍数），依次尝试直到端点都在有效区内
var autoplayAmplitudes = []float64{1.5, 1.2, 1.05}

// autoplaySquares 圆周模式正方形半边长候选（像素）
var autoplaySquares = []float64{20, 14, 9, 6}

// Autoplayer 按步骤类型生成无错误的输入序列
//
// 用于无界面的玩法校验：关闭开场说明、选中工具、对每个活动目标刷到清除、
// 把物品拖到正确区域、选择正确选项，然后按固定帧长推进状态机。
// 找不到合法的刷动路径时什么也不做，目标会按正常流程超时。
type Autoplayer struct {
	m  *StepStateMachine
	dt float64
}

// NewAutoplayer 创建自动玩家，每帧 1/60 秒
func NewAutoplayer(m *StepStateMachine) *Autoplayer {
	return &Autoplayer{m: m, dt: 1.0 / 60.0}
}

// Advance 对当前状态执行一次操作，然后推进一帧
func (a *Autoplayer) Advance() {
	a.act()
	a.m.Update(a.dt)
}

// Run 一直推进到终止状态或超过 limit 秒（调度器时间）
func (a *Autoplayer) Run(limit float64) Phase {
	start := a.m.Now()
	for !a.m.Phase().Terminal() && a.m.Now()-start < limit {
		a.Advance()
	}
	return a.m.Phase()
}

func (a *Autoplayer) act() {
	m := a.m
	switch m.Phase() {
	case PhaseIntro:
		c := m.reference.Center()
		m.PointerDown(GestureSample{X: c.X, Y: c.Y, T: m.Now()})
		return
	case PhaseHintShown:
		a.pickTool()
		return
	case PhaseActive:
	default:
		return
	}

	a.pickTool()
	step := m.Step()
	switch {
	case step.Kind.RequiresGesture():
		_, t, ok := m.spawner.ActiveTarget()
		if !ok {
			return
		}
		if step.Kind == config.StepKindCircularMotion {
			a.rub(step, t)
		} else {
			a.stroke(step, t)
		}
	case step.Kind == config.StepKindDragToTarget:
		from := step.Source.Denormalize(m.reference)
		if from.IsEmpty() {
			from = m.reference
		}
		a.path(from.Center(), step.Drop.Denormalize(m.reference).Center())
	case step.Kind == config.StepKindChoice:
		for i, c := range m.Choices() {
			if c.Correct {
				m.SelectChoice(i)
				return
			}
		}
	}
}

func (a *Autoplayer) pickTool() {
	m := a.m
	if !m.def.RequireTool {
		return
	}
	if want := m.Step().Tool; want != "" && m.SelectedTool() != want {
		m.SelectTool(want)
	}
}

// stroke 沿主轴在目标附近往返，产生剩余所需的反转次数
func (a *Autoplayer) stroke(step *config.StepConfig, t *components.TargetComponent) {
	cfg := TrackerConfigFromStep(step)
	axis := types.Point{Y: 1}
	if cfg.Axis == config.AxisHorizontal {
		axis = types.Point{X: 1}
	}
	p := t.Position
	along := func(d float64) types.Point {
		return types.Point{X: p.X + axis.X*d, Y: p.Y + axis.Y*d}
	}

	for _, k := range autoplayAmplitudes {
		d := cfg.MinDelta * k
		for _, ends := range [][2]types.Point{
			{along(-d), along(d)},
			{p, along(d)},
			{p, along(-d)},
		} {
			if !a.inside(ends[0]) || !a.inside(ends[1]) {
				continue
			}
			pts := []types.Point{ends[0], ends[0]}
			for i := 0; i <= t.Required-t.Received; i++ {
				pts = append(pts, ends[(i+1)%2])
			}
			a.gesture(pts)
			return
		}
	}
}

// rub 绕目标画正方形，路径长度覆盖剩余笔画单元
func (a *Autoplayer) rub(step *config.StepConfig, t *components.TargetComponent) {
	cfg := TrackerConfigFromStep(step)
	p := t.Position
	reach := t.Radius + step.Gesture.HitExpand

	for _, h := range autoplaySquares {
		if reach > 0 && h*math.Sqrt2 > reach {
			continue
		}
		square := []types.Point{
			{X: p.X - h, Y: p.Y - h}, {X: p.X + h, Y: p.Y - h},
			{X: p.X + h, Y: p.Y + h}, {X: p.X - h, Y: p.Y + h},
		}
		fits := true
		for _, q := range square {
			if !a.inside(q) {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		remaining := float64(t.Required - t.Received)
		laps := int(math.Ceil(remaining*cfg.MovementThreshold/(8*h))) + 1
		pts := []types.Point{square[0], square[0]}
		for i := 0; i < laps; i++ {
			pts = append(pts, square[1], square[2], square[3], square[0])
		}
		a.gesture(pts)
		return
	}
}

// path 按下、经过中点、在终点松开
func (a *Autoplayer) path(from, to types.Point) {
	mid := types.Point{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}
	a.gesture([]types.Point{from, mid, to})
}

// gesture 第一个点按下，其余点依次移动，最后一个点松开
func (a *Autoplayer) gesture(pts []types.Point) {
	if len(pts) == 0 {
		return
	}
	m := a.m
	now := m.Now()
	m.PointerDown(GestureSample{X: pts[0].X, Y: pts[0].Y, T: now})
	for _, q := range pts[1:] {
		m.PointerMove(GestureSample{X: q.X, Y: q.Y, T: now})
	}
	last := pts[len(pts)-1]
	m.PointerUp(GestureSample{X: last.X, Y: last.Y, T: now})
}

// inside 与手势门控一致：在步骤区域内，且有遮罩时在遮罩内
func (a *Autoplayer) inside(p types.Point) bool {
	region := a.m.Region()
	if !region.Contains(p.X, p.Y) {
		return false
	}
	pm := a.m.spawner.Mask()
	if pm == nil {
		return true
	}
	norm, ok := region.NormalizePoint(p.X, p.Y)
	return ok && pm.ContainsNorm(norm)
}
