package scenes

import "github.com/jermochi/Hygin/pkg/utils"

// pointerAction 一帧拖拽状态在场景中的含义
type pointerAction int

const (
	pointerNone pointerAction = iota
	// pointerDown 在游戏区域按下
	pointerDown
	// pointerMove 在游戏区域内拖动
	pointerMove
	// pointerUp 在游戏区域松开
	pointerUp
	// pointerClick 在按钮上按下并松开
	pointerClick
)

// pointerRouter 把一次拖拽分配给按钮或游戏区域
// 按下时落在按钮上的拖拽整段都属于按钮，不会变成手势
type pointerRouter struct {
	onUI bool
}

// route 计算本帧的动作
//
// 参数:
//   - info: DragManager 本帧的拖拽信息
//   - hitUI: 按下位置是否落在某个按钮上（只在 Started 帧使用）
func (r *pointerRouter) route(info utils.DragInfo, hitUI bool) pointerAction {
	switch info.State {
	case utils.DragStateStarted:
		r.onUI = hitUI
		if r.onUI {
			return pointerNone
		}
		return pointerDown
	case utils.DragStateDragging:
		if r.onUI || !info.Moved {
			return pointerNone
		}
		return pointerMove
	case utils.DragStateEnded:
		onUI := r.onUI
		r.onUI = false
		if onUI {
			return pointerClick
		}
		return pointerUp
	}
	return pointerNone
}

// reset 放弃当前拖拽（场景切换时）
func (r *pointerRouter) reset() {
	r.onUI = false
}
