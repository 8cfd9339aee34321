package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/jermochi/Hygin/pkg/types"
	"gopkg.in/yaml.v3"
)

// ErrUnknownGame 请求的小游戏ID不存在
var ErrUnknownGame = errors.New("unknown game")

// StepKind 步骤的交互类型
type StepKind string

const (
	// StepKindDirectionalStroke 在矩形区域内来回刷动（方向反转计数）
	StepKindDirectionalStroke StepKind = "directionalStroke"
	// StepKindCircularMotion 在目标附近持续移动（路径长度累计）
	StepKindCircularMotion StepKind = "circularMotion"
	// StepKindPixelMaskStroke 方向刷动，但只在像素遮罩覆盖的位置有效
	StepKindPixelMaskStroke StepKind = "pixelMaskStroke"
	// StepKindDragToTarget 拖拽物品并在目标区域释放
	StepKindDragToTarget StepKind = "dragToTarget"
	// StepKindChoice 在若干选项中点选正确的一项
	StepKindChoice StepKind = "choice"
	// StepKindTransition 无交互的过渡步骤，定时自动推进
	StepKindTransition StepKind = "transition"
)

// RequiresGesture 是否需要手势识别（并由 TargetSpawner 生成目标）
func (k StepKind) RequiresGesture() bool {
	switch k {
	case StepKindDirectionalStroke, StepKindCircularMotion, StepKindPixelMaskStroke:
		return true
	}
	return false
}

// Scoring 该类型的步骤是否参与分数分配
func (k StepKind) Scoring() bool {
	return k != StepKindTransition
}

// Axis 方向刷动的主轴
type Axis string

const (
	AxisVertical   Axis = "vertical"
	AxisHorizontal Axis = "horizontal"
)

// MaskCriteria 像素遮罩的判定方式
type MaskCriteria string

const (
	// MaskCriteriaAlpha 透明度阈值（通用剪影）
	MaskCriteriaAlpha MaskCriteria = "alpha"
	// MaskCriteriaBrightness 亮度阈值（检测牙齿等亮白区域）
	MaskCriteriaBrightness MaskCriteria = "brightness"
	// MaskCriteriaSoftTissue 色相/亮度带，并排除顶部区域（检测舌头）
	MaskCriteriaSoftTissue MaskCriteria = "softTissue"
)

// ScoringStrategy 计分策略
type ScoringStrategy string

const (
	// ScoringPerStep 每步固定分值，连续错误递减扣分
	ScoringPerStep ScoringStrategy = "perStep"
	// ScoringTimeBonus 基础分 + 剩余时间奖励 - 各类扣分
	ScoringTimeBonus ScoringStrategy = "timeBonus"
)

// 默认时间参数（秒）
const (
	DefaultFailureWindow     = 3.0
	DefaultFailureClearDelay = 0.6
	DefaultSuccessClearDelay = 1.2
	DefaultNextSpawnDelay    = 1.0
	DefaultHintDisplay       = 2.0
	DefaultChoiceDelay       = 1.0
)

// 默认手势与生成参数
const (
	DefaultMinDelta            = 15.0
	DefaultOrthogonalTolerance = 30.0
	DefaultDominanceRatio      = 1.0
	DefaultMovementThreshold   = 60.0
	DefaultHitExpand           = 30.0
	DefaultTargetRadius        = 28.0
	DefaultRequiredStrokes     = 3
	DefaultWinCount            = 3
	DefaultSpawnRetries        = 30
	DefaultMaskStride          = 3
	DefaultMistakeCap          = 3
)

// CueConfig 进入/完成步骤时派发的副作用（音效、画面切换）
// 对核心逻辑不透明，只原样转交给外部协作者
type CueConfig struct {
	Sound  string `yaml:"sound"`  // 音效资源ID
	Visual string `yaml:"visual"` // 切换的画面资源ID
}

// MaskConfig 像素遮罩配置
type MaskConfig struct {
	Image         string        `yaml:"image"`         // 源图片路径
	Criteria      MaskCriteria  `yaml:"criteria"`      // 判定方式
	MinAlpha      uint8         `yaml:"minAlpha"`      // 最小不透明度
	MinBrightness float64       `yaml:"minBrightness"` // 最小亮度 0~1
	MaxBrightness float64       `yaml:"maxBrightness"` // 最大亮度 0~1（0 表示不限制）
	ExcludeTop    float64       `yaml:"excludeTop"`    // 排除顶部比例（softTissue 用于剔除牙齿）
	Stride        int           `yaml:"stride"`        // 生成点采样步长（像素）
	BandMinY      float64       `yaml:"bandMinY"`      // 生成子带（归一化 Y 下限）
	BandMaxY      float64       `yaml:"bandMaxY"`      // 生成子带（归一化 Y 上限，0 表示 1）
	Margin        int           `yaml:"margin"`        // 生成点周围需要同样在遮罩内的边距（像素）
	Anchors       []types.Point `yaml:"anchors"`       // 遮罩失败时的手动锚点（比例坐标）
}

// GestureConfig 手势识别参数
type GestureConfig struct {
	Axis                Axis    `yaml:"axis"`                // 刷动主轴
	MinDelta            float64 `yaml:"minDelta"`            // 主轴最小位移（像素）
	OrthogonalTolerance float64 `yaml:"orthogonalTolerance"` // 垂直轴容差（像素）
	DominanceRatio      float64 `yaml:"dominanceRatio"`      // 垂直轴/主轴占优比例
	MovementThreshold   float64 `yaml:"movementThreshold"`   // 圆周模式每个笔画单元的路径长度（像素）
	HitExpand           float64 `yaml:"hitExpand"`           // 圆周模式目标命中区扩展（像素）
}

// TargetConfig 目标（细菌）生成与计时参数
type TargetConfig struct {
	WinCount          int     `yaml:"winCount"`          // 完成步骤需要清除的目标数
	RequiredStrokes   int     `yaml:"requiredStrokes"`   // 清除单个目标需要的笔画单元
	Radius            float64 `yaml:"radius"`            // 目标半径（像素）
	FailureWindow     float64 `yaml:"failureWindow"`     // 失败时限（秒）
	SuccessClearDelay float64 `yaml:"successClearDelay"` // 成功后显示时长（秒）
	FailureClearDelay float64 `yaml:"failureClearDelay"` // 失败后显示时长（秒）
	NextSpawnDelay    float64 `yaml:"nextSpawnDelay"`    // 移除后到下次生成的间隔（秒）
	SpawnRetries      int     `yaml:"spawnRetries"`      // 遮罩取点重试次数
	Jitter            float64 `yaml:"jitter"`            // 锚点抖动（比例）
}

// ChoiceConfig 选择步骤的单个选项
type ChoiceConfig struct {
	Text    string     `yaml:"text"`
	Correct bool       `yaml:"correct"`
	Region  types.Rect `yaml:"region"` // 选项的点击区域（比例坐标）
}

// StepConfig 小游戏的一个步骤（静态、不可变）
type StepConfig struct {
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	Hint     string   `yaml:"hint"`
	Kind     StepKind `yaml:"kind"`
	Tool     string   `yaml:"tool"` // 需要选中的工具（requireTool 的游戏）

	Region   types.Rect  `yaml:"region"`   // 交互有效区域（比例坐标）
	Fallback types.Rect  `yaml:"fallback"` // 遮罩不可用时的几何生成带（比例坐标）
	Mask     *MaskConfig `yaml:"mask"`

	Gesture GestureConfig `yaml:"gesture"`
	Target  TargetConfig  `yaml:"target"`

	// 拖拽步骤
	Source     types.Rect   `yaml:"source"`     // 可开始拖拽的区域
	Drop       types.Rect   `yaml:"drop"`       // 正确释放区域
	WrongDrops []types.Rect `yaml:"wrongDrops"` // 错误释放区域（计为错误操作）

	// 选择步骤
	Choices []ChoiceConfig `yaml:"choices"`
	Shuffle bool           `yaml:"shuffle"` // 每次进入步骤时打乱选项文本

	Duration      float64 `yaml:"duration"`      // 过渡步骤持续时间（秒）
	CompleteDelay float64 `yaml:"completeDelay"` // 完成后进入下一步前的展示时间（秒）

	OnEnter    CueConfig `yaml:"onEnter"`
	OnComplete CueConfig `yaml:"onComplete"`
}

// LoseConfig 失败条件配置
// 并非所有小游戏都有"生命值"，因此是每个游戏独立的开关
type LoseConfig struct {
	Enabled    bool `yaml:"enabled"`
	MistakeCap int  `yaml:"mistakeCap"`
}

// ScoringConfig 计分配置
type ScoringConfig struct {
	Strategy ScoringStrategy `yaml:"strategy"`

	// perStep
	StepPoints float64   `yaml:"stepPoints"` // 0 表示 100 / 计分步骤数
	Penalties  []float64 `yaml:"penalties"`  // 同一步骤内第 1、2、3+ 次错误的扣分

	// timeBonus
	Base             float64 `yaml:"base"`
	CountdownSeconds float64 `yaml:"countdownSeconds"`
	BonusPerSecond   float64 `yaml:"bonusPerSecond"`
	WrongToolPenalty float64 `yaml:"wrongToolPenalty"`
	HintPenalty      float64 `yaml:"hintPenalty"`
	MissPenalty      float64 `yaml:"missPenalty"`
}

// GameDefinition 一个小游戏的完整定义
type GameDefinition struct {
	ID          string        `yaml:"id"`          // 游戏ID，如 "toothbrushing"
	Name        string        `yaml:"name"`        // 显示名称
	Slot        int           `yaml:"slot"`        // 分数存储槽位 1~3
	Route       string        `yaml:"route"`       // 路由路径，如 "/toothbrushing"
	Intro       string        `yaml:"intro"`       // 开场说明
	HintDisplay float64       `yaml:"hintDisplay"` // 进入手势步骤前的提示时长（秒）
	RequireTool bool          `yaml:"requireTool"` // 是否需要先选中正确工具
	Tools       []string      `yaml:"tools"`       // 工具栏
	Lose        LoseConfig    `yaml:"lose"`
	Scoring     ScoringConfig `yaml:"scoring"`
	Steps       []StepConfig  `yaml:"steps"`
}

// ScoringStepCount 返回参与分数分配的步骤数量
func (d *GameDefinition) ScoringStepCount() int {
	n := 0
	for i := range d.Steps {
		if d.Steps[i].Kind.Scoring() {
			n++
		}
	}
	return n
}

// LoadGameDefinition 从 YAML 文件加载小游戏定义
func LoadGameDefinition(filePath string) (*GameDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read game definition file %s: %w", filePath, err)
	}

	def, err := ParseGameDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("invalid game definition in %s: %w", filePath, err)
	}
	return def, nil
}

// ParseGameDefinition 解析 YAML 数据，应用默认值并校验
func ParseGameDefinition(data []byte) (*GameDefinition, error) {
	var def GameDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse game definition YAML: %w", err)
	}

	applyGameDefaults(&def)

	if err := validateGameDefinition(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// applyGameDefaults 为缺失的可选字段设置默认值
func applyGameDefaults(def *GameDefinition) {
	if def.HintDisplay == 0 {
		def.HintDisplay = DefaultHintDisplay
	}
	if def.Lose.Enabled && def.Lose.MistakeCap == 0 {
		def.Lose.MistakeCap = DefaultMistakeCap
	}
	if def.Scoring.Strategy == "" {
		def.Scoring.Strategy = ScoringPerStep
	}
	if def.Scoring.Strategy == ScoringPerStep {
		if def.Scoring.StepPoints == 0 {
			if n := def.ScoringStepCount(); n > 0 {
				def.Scoring.StepPoints = 100.0 / float64(n)
			}
		}
		if len(def.Scoring.Penalties) == 0 {
			def.Scoring.Penalties = []float64{7, 5, 3}
		}
	}

	for i := range def.Steps {
		applyStepDefaults(&def.Steps[i])
	}
}

func applyStepDefaults(step *StepConfig) {
	if step.Region.IsEmpty() {
		step.Region = types.Rect{X: 0, Y: 0, W: 1, H: 1}
	}
	if step.Fallback.IsEmpty() {
		step.Fallback = step.Region
	}

	g := &step.Gesture
	if g.Axis == "" {
		g.Axis = AxisVertical
	}
	if g.MinDelta == 0 {
		g.MinDelta = DefaultMinDelta
	}
	if g.OrthogonalTolerance == 0 {
		g.OrthogonalTolerance = DefaultOrthogonalTolerance
	}
	if g.DominanceRatio == 0 {
		g.DominanceRatio = DefaultDominanceRatio
	}
	if g.MovementThreshold == 0 {
		g.MovementThreshold = DefaultMovementThreshold
	}
	if g.HitExpand == 0 {
		g.HitExpand = DefaultHitExpand
	}

	tc := &step.Target
	if tc.WinCount == 0 {
		tc.WinCount = DefaultWinCount
	}
	if tc.RequiredStrokes == 0 {
		tc.RequiredStrokes = DefaultRequiredStrokes
	}
	if tc.Radius == 0 {
		tc.Radius = DefaultTargetRadius
	}
	if tc.FailureWindow == 0 {
		tc.FailureWindow = DefaultFailureWindow
	}
	if tc.SuccessClearDelay == 0 {
		tc.SuccessClearDelay = DefaultSuccessClearDelay
	}
	if tc.FailureClearDelay == 0 {
		tc.FailureClearDelay = DefaultFailureClearDelay
	}
	if tc.NextSpawnDelay == 0 {
		tc.NextSpawnDelay = DefaultNextSpawnDelay
	}
	if tc.SpawnRetries == 0 {
		tc.SpawnRetries = DefaultSpawnRetries
	}

	if step.Mask != nil {
		if step.Mask.Stride == 0 {
			step.Mask.Stride = DefaultMaskStride
		}
		if step.Mask.BandMaxY == 0 {
			step.Mask.BandMaxY = 1
		}
	}

	if step.Kind == StepKindChoice && step.CompleteDelay == 0 {
		step.CompleteDelay = DefaultChoiceDelay
	}
}

// validateGameDefinition 验证配置的有效性
func validateGameDefinition(def *GameDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("game id cannot be empty")
	}
	if def.Slot < 1 || def.Slot > 3 {
		return fmt.Errorf("game %s: slot must be between 1 and 3, got %d", def.ID, def.Slot)
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("game %s: steps cannot be empty", def.ID)
	}
	if def.Lose.Enabled && def.Lose.MistakeCap < 1 {
		return fmt.Errorf("game %s: lose.mistakeCap must be >= 1, got %d", def.ID, def.Lose.MistakeCap)
	}

	switch def.Scoring.Strategy {
	case ScoringPerStep:
		for _, p := range def.Scoring.Penalties {
			if p < 0 {
				return fmt.Errorf("game %s: penalties must be >= 0, got %v", def.ID, p)
			}
		}
	case ScoringTimeBonus:
		if def.Scoring.CountdownSeconds < 0 || def.Scoring.BonusPerSecond < 0 {
			return fmt.Errorf("game %s: countdownSeconds and bonusPerSecond must be >= 0", def.ID)
		}
	default:
		return fmt.Errorf("game %s: unknown scoring strategy %q", def.ID, def.Scoring.Strategy)
	}

	tools := make(map[string]bool, len(def.Tools))
	for _, tool := range def.Tools {
		tools[tool] = true
	}

	for i := range def.Steps {
		step := &def.Steps[i]
		if err := validateStep(step, def.RequireTool, tools); err != nil {
			return fmt.Errorf("game %s step %d (%s): %w", def.ID, i, step.Title, err)
		}
	}
	return nil
}

func validateStep(step *StepConfig, requireTool bool, tools map[string]bool) error {
	switch step.Kind {
	case StepKindDirectionalStroke, StepKindCircularMotion:
	case StepKindPixelMaskStroke:
		if step.Mask == nil {
			return fmt.Errorf("pixelMaskStroke requires a mask")
		}
	case StepKindDragToTarget:
		if step.Drop.IsEmpty() {
			return fmt.Errorf("dragToTarget requires a drop region")
		}
	case StepKindChoice:
		correct := 0
		for _, c := range step.Choices {
			if c.Correct {
				correct++
			}
			if c.Region.IsEmpty() {
				return fmt.Errorf("choice %q has no region", c.Text)
			}
		}
		if correct != 1 {
			return fmt.Errorf("choice step needs exactly one correct option, got %d", correct)
		}
	case StepKindTransition:
		if step.Duration <= 0 {
			return fmt.Errorf("transition requires a positive duration")
		}
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}

	if step.Kind.RequiresGesture() {
		if step.Target.RequiredStrokes < 1 || step.Target.WinCount < 1 {
			return fmt.Errorf("requiredStrokes and winCount must be >= 1")
		}
		if step.Gesture.Axis != AxisVertical && step.Gesture.Axis != AxisHorizontal {
			return fmt.Errorf("unknown gesture axis %q", step.Gesture.Axis)
		}
	}

	if step.Mask != nil {
		switch step.Mask.Criteria {
		case MaskCriteriaAlpha, MaskCriteriaBrightness, MaskCriteriaSoftTissue:
		default:
			return fmt.Errorf("unknown mask criteria %q", step.Mask.Criteria)
		}
		if step.Mask.BandMinY < 0 || step.Mask.BandMaxY > 1 || step.Mask.BandMinY >= step.Mask.BandMaxY {
			return fmt.Errorf("invalid mask band [%v, %v]", step.Mask.BandMinY, step.Mask.BandMaxY)
		}
	}

	if requireTool && step.Kind != StepKindTransition && step.Tool != "" && !tools[step.Tool] {
		return fmt.Errorf("tool %q is not in the toolbar", step.Tool)
	}
	return nil
}
