package config

import "github.com/jermochi/Hygin/pkg/types"

// 布局配置常量
// 所有坐标使用逻辑屏幕坐标（Layout 返回的固定尺寸），由 Ebitengine 负责缩放

// 窗口
const (
	// GameWindowWidth 逻辑屏幕宽度
	GameWindowWidth = 800
	// GameWindowHeight 逻辑屏幕高度
	GameWindowHeight = 600
)

// 顶部信息栏
const (
	HUDHeight  = 56.0
	HUDPadding = 16.0
)

// 参考区域：步骤配置中的比例坐标都相对这个矩形
const (
	PlayAreaX      = 120.0
	PlayAreaY      = 68.0
	PlayAreaWidth  = 560.0
	PlayAreaHeight = 420.0
)

// 底部工具栏
const (
	ToolbarY         = 506.0
	ToolButtonWidth  = 120.0
	ToolButtonHeight = 64.0
	ToolButtonGap    = 16.0
)

// 通用按钮
const (
	ButtonWidth  = 180.0
	ButtonHeight = 48.0
	ButtonGap    = 20.0

	// HintButton 右上角提示按钮
	HintButtonWidth  = 96.0
	HintButtonHeight = 36.0
)

// 主菜单
const (
	MenuTitleY       = 90.0
	MenuCardWidth    = 200.0
	MenuCardHeight   = 220.0
	MenuCardGap      = 30.0
	MenuCardY        = 190.0
	MenuFooterY      = 470.0
	MenuToggleWidth  = 120.0
	MenuToggleHeight = 40.0
)

// PlayArea 参考区域（像素）
func PlayArea() types.Rect {
	return types.Rect{X: PlayAreaX, Y: PlayAreaY, W: PlayAreaWidth, H: PlayAreaHeight}
}

// RowRects 在 y 处水平居中排列 n 个等宽矩形
//
// 参数:
//   - n: 矩形数量
//   - w, h: 单个矩形尺寸
//   - gap: 间距
//   - y: 顶边坐标
//
// 返回:
//   - 从左到右的矩形；n <= 0 时返回 nil
func RowRects(n int, w, h, gap, y float64) []types.Rect {
	if n <= 0 {
		return nil
	}
	total := float64(n)*w + float64(n-1)*gap
	x := (GameWindowWidth - total) / 2
	rects := make([]types.Rect, n)
	for i := range rects {
		rects[i] = types.Rect{X: x + float64(i)*(w+gap), Y: y, W: w, H: h}
	}
	return rects
}

// ToolbarRects 工具栏中 n 个工具按钮的位置
func ToolbarRects(n int) []types.Rect {
	return RowRects(n, ToolButtonWidth, ToolButtonHeight, ToolButtonGap, ToolbarY)
}

// HintButtonRect 提示按钮位置
func HintButtonRect() types.Rect {
	return types.Rect{
		X: GameWindowWidth - HUDPadding - HintButtonWidth,
		Y: (HUDHeight - HintButtonHeight) / 2,
		W: HintButtonWidth,
		H: HintButtonHeight,
	}
}
