// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// IsJustTouchedOrClicked 检查是否刚刚发生点击或触摸
// 返回是否点击以及点击位置
func IsJustTouchedOrClicked() (bool, int, int) {
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}
	return false, 0, 0
}

// GetPointerPosition 获取当前指针位置，优先返回触摸位置
func GetPointerPosition() (int, int) {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		return ebiten.TouchPosition(touchIDs[0])
	}
	return ebiten.CursorPosition()
}

// ============================================================================
// 拖拽状态管理器 - 把鼠标与触摸统一为按下/移动/松开
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放），只持续一帧
	DragStateEnded
)

// PointerSnapshot 一帧的原始指针输入
type PointerSnapshot struct {
	Pressed bool
	X, Y    int
	// Touch 为 true 时 TouchID 有效
	Touch   bool
	TouchID ebiten.TouchID
}

// ReadPointer 读取当前帧的指针输入
// 已在跟踪的触摸优先；否则取第一个触摸；没有触摸时使用鼠标左键
func ReadPointer(tracked ebiten.TouchID, tracking bool) PointerSnapshot {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if tracking {
		for _, id := range touchIDs {
			if id == tracked {
				x, y := ebiten.TouchPosition(id)
				return PointerSnapshot{Pressed: true, X: x, Y: y, Touch: true, TouchID: id}
			}
		}
	}
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return PointerSnapshot{Pressed: true, X: x, Y: y, Touch: true, TouchID: touchIDs[0]}
	}
	x, y := ebiten.CursorPosition()
	return PointerSnapshot{Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), X: x, Y: y}
}

// DragInfo 拖拽信息
type DragInfo struct {
	// State 当前拖拽状态
	State DragState
	// StartX, StartY 拖拽起始位置（屏幕坐标）
	StartX, StartY int
	// CurrentX, CurrentY 当前位置（屏幕坐标），松开的那一帧保留最后位置
	CurrentX, CurrentY int
	// Moved 本帧位置是否变化
	Moved bool
	// TouchID 当前跟踪的触摸ID（-1 表示鼠标）
	TouchID ebiten.TouchID
	// IsTouchInput 是否为触摸输入
	IsTouchInput bool
}

// DragManager 拖拽管理器
// 每帧调用一次 Update（或在测试中调用 Step）
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	dm := &DragManager{}
	dm.Reset()
	return dm
}

// Update 读取当前输入并更新拖拽状态
func (dm *DragManager) Update() {
	tracking := dm.info.IsTouchInput && (dm.info.State == DragStateStarted || dm.info.State == DragStateDragging)
	dm.Step(ReadPointer(dm.info.TouchID, tracking))
}

// Step 用一帧的输入推进状态
func (dm *DragManager) Step(s PointerSnapshot) {
	dm.info.Moved = false

	switch dm.info.State {
	case DragStateNone, DragStateEnded:
		if dm.info.State == DragStateEnded {
			dm.Reset()
		}
		if !s.Pressed {
			return
		}
		touchID := ebiten.TouchID(-1)
		if s.Touch {
			touchID = s.TouchID
		}
		dm.info = DragInfo{
			State:        DragStateStarted,
			StartX:       s.X,
			StartY:       s.Y,
			CurrentX:     s.X,
			CurrentY:     s.Y,
			TouchID:      touchID,
			IsTouchInput: s.Touch,
		}

	case DragStateStarted, DragStateDragging:
		if !s.Pressed || s.Touch != dm.info.IsTouchInput || (s.Touch && s.TouchID != dm.info.TouchID) {
			dm.info.State = DragStateEnded
			return
		}
		dm.info.State = DragStateDragging
		if s.X != dm.info.CurrentX || s.Y != dm.info.CurrentY {
			dm.info.CurrentX, dm.info.CurrentY = s.X, s.Y
			dm.info.Moved = true
		}
	}
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{
		State:   DragStateNone,
		TouchID: -1,
	}
}

// GetState 获取当前拖拽状态
func (dm *DragManager) GetState() DragState {
	return dm.info.State
}

// GetInfo 获取完整拖拽信息
func (dm *DragManager) GetInfo() DragInfo {
	return dm.info
}

// IsDragging 是否正在拖拽
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

// JustStarted 是否刚开始拖拽（本帧）
func (dm *DragManager) JustStarted() bool {
	return dm.info.State == DragStateStarted
}

// JustEnded 是否刚结束拖拽（本帧）
func (dm *DragManager) JustEnded() bool {
	return dm.info.State == DragStateEnded
}

// GetDragDistance 获取拖拽距离（从起点到当前位置）
func (dm *DragManager) GetDragDistance() (dx, dy int) {
	return dm.info.CurrentX - dm.info.StartX, dm.info.CurrentY - dm.info.StartY
}

// IsTouchDrag 是否为触摸拖拽
func (dm *DragManager) IsTouchDrag() bool {
	return dm.info.IsTouchInput
}
