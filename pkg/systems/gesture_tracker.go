package systems

import (
	"math"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/mask"
	"github.com/jermochi/Hygin/pkg/types"
)

// GestureMode 手势识别模式
type GestureMode int

const (
	// GestureDirectional 方向刷动：主轴方向反转时计一个笔画单元
	GestureDirectional GestureMode = iota
	// GestureCircular 持续移动：路径长度累计越过阈值时计一个笔画单元
	GestureCircular
)

// Direction 主轴方向
type Direction int

const (
	DirectionNone     Direction = 0
	DirectionNegative Direction = -1 // 向上 / 向左
	DirectionPositive Direction = 1  // 向下 / 向右
)

// GestureSample 指针采样（参考坐标系像素 + 时间戳秒）
type GestureSample struct {
	X, Y float64
	T    float64
}

// Point 采样位置
func (s GestureSample) Point() types.Point {
	return types.Point{X: s.X, Y: s.Y}
}

// GestureEvent 识别出的一个笔画单元
type GestureEvent struct {
	Position  types.Point
	Direction Direction // 仅方向模式有效
	T         float64
}

// TrackerConfig 手势识别参数（由步骤配置推导）
type TrackerConfig struct {
	Mode                GestureMode
	Axis                config.Axis
	MinDelta            float64
	OrthogonalTolerance float64
	DominanceRatio      float64
	MovementThreshold   float64
}

// TrackerConfigFromStep 从步骤配置推导识别参数
func TrackerConfigFromStep(step *config.StepConfig) TrackerConfig {
	mode := GestureDirectional
	if step.Kind == config.StepKindCircularMotion {
		mode = GestureCircular
	}
	return TrackerConfig{
		Mode:                mode,
		Axis:                step.Gesture.Axis,
		MinDelta:            step.Gesture.MinDelta,
		OrthogonalTolerance: step.Gesture.OrthogonalTolerance,
		DominanceRatio:      step.Gesture.DominanceRatio,
		MovementThreshold:   step.Gesture.MovementThreshold,
	}
}

// GestureGate 每个采样的门控条件，由调用方按当前状态提供
type GestureGate struct {
	// Region 活动区域（像素），为空表示布局尚未就绪
	Region types.Rect
	// Mask 可选的像素遮罩，映射到 Region 上
	Mask *mask.PixelMask
	// TargetActive 当前是否存在 status=active 的目标
	TargetActive bool
	// Target 与 HitRadius 仅圆周模式使用：只在目标附近累计路径
	Target    types.Point
	HitRadius float64
}

// GestureTracker 指针手势识别器
//
// 只保留上一个采样点（方向模式另有上一方向，圆周模式另有累计路径长度）。
// 任何门控失败都会让下一次合格采样重新成为参考点，而不是产生一个巨大的位移。
type GestureTracker struct {
	cfg TrackerConfig

	down   bool
	hasRef bool
	ref    types.Point

	lastDir     Direction
	accumulated float64
}

// NewGestureTracker 创建识别器
func NewGestureTracker(cfg TrackerConfig) *GestureTracker {
	return &GestureTracker{cfg: cfg}
}

// Configure 切换识别参数并清空状态
func (g *GestureTracker) Configure(cfg TrackerConfig) {
	g.cfg = cfg
	g.Reset()
}

// Config 当前识别参数
func (g *GestureTracker) Config() TrackerConfig {
	return g.cfg
}

// OnPointerDown 指针按下，开始接收移动采样
func (g *GestureTracker) OnPointerDown(s GestureSample) {
	g.down = true
	g.clearReference()
	g.accumulated = 0
}

// OnPointerMove 处理一次移动采样
//
// 返回:
//   - GestureEvent: 识别出的笔画单元
//   - bool: 是否产生了笔画单元
func (g *GestureTracker) OnPointerMove(s GestureSample, gate GestureGate) (GestureEvent, bool) {
	if !g.down {
		return GestureEvent{}, false
	}
	if gate.Region.IsEmpty() || !gate.TargetActive {
		g.hasRef = false
		return GestureEvent{}, false
	}

	p := s.Point()
	if !gate.Region.Contains(p.X, p.Y) {
		g.clearReference()
		return GestureEvent{}, false
	}
	if gate.Mask != nil {
		norm, ok := gate.Region.NormalizePoint(p.X, p.Y)
		if !ok || !gate.Mask.ContainsNorm(norm) {
			g.clearReference()
			return GestureEvent{}, false
		}
	}

	if g.cfg.Mode == GestureCircular {
		return g.moveCircular(s, p, gate)
	}
	return g.moveDirectional(s, p)
}

func (g *GestureTracker) moveDirectional(s GestureSample, p types.Point) (GestureEvent, bool) {
	if !g.hasRef {
		g.ref = p
		g.hasRef = true
		return GestureEvent{}, false
	}

	primary, orth := p.Y-g.ref.Y, p.X-g.ref.X
	if g.cfg.Axis == config.AxisHorizontal {
		primary, orth = orth, primary
	}

	// 垂直轴位移占优：不是沿主轴的刷动，更新参考点但保留方向
	if math.Abs(orth) > g.cfg.OrthogonalTolerance && math.Abs(orth) >= g.cfg.DominanceRatio*math.Abs(primary) {
		g.ref = p
		return GestureEvent{}, false
	}
	// 主轴位移不足：参考点不动，慢速移动可以累积
	if math.Abs(primary) < g.cfg.MinDelta {
		return GestureEvent{}, false
	}

	dir := DirectionPositive
	if primary < 0 {
		dir = DirectionNegative
	}
	reversed := g.lastDir != DirectionNone && dir != g.lastDir
	g.lastDir = dir
	g.ref = p

	if !reversed {
		return GestureEvent{}, false
	}
	return GestureEvent{Position: p, Direction: dir, T: s.T}, true
}

func (g *GestureTracker) moveCircular(s GestureSample, p types.Point, gate GestureGate) (GestureEvent, bool) {
	if gate.HitRadius > 0 && p.Distance(gate.Target) > gate.HitRadius {
		g.hasRef = false
		return GestureEvent{}, false
	}
	if !g.hasRef {
		g.ref = p
		g.hasRef = true
		return GestureEvent{}, false
	}

	g.accumulated += p.Distance(g.ref)
	g.ref = p
	if g.accumulated < g.cfg.MovementThreshold {
		return GestureEvent{}, false
	}
	g.accumulated = 0
	return GestureEvent{Position: p, T: s.T}, true
}

// OnPointerUp 指针松开，丢弃全部跟踪状态
func (g *GestureTracker) OnPointerUp() {
	g.down = false
	g.clearReference()
	g.accumulated = 0
}

// Reset 完全重置（切换步骤、重开游戏）
func (g *GestureTracker) Reset() {
	g.down = false
	g.clearReference()
	g.accumulated = 0
}

// Down 指针是否按下
func (g *GestureTracker) Down() bool {
	return g.down
}

// Accumulated 圆周模式当前累计的路径长度
func (g *GestureTracker) Accumulated() float64 {
	return g.accumulated
}

func (g *GestureTracker) clearReference() {
	g.hasRef = false
	g.lastDir = DirectionNone
}
