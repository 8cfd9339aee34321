package components

import "github.com/jermochi/Hygin/pkg/types"

// DragSession 一次指针拖拽
// 只在按下到松开之间存在，由持有者显式创建和销毁
type DragSession struct {
	Origin    types.Point // 按下位置
	Current   types.Point // 最新位置
	StartedAt float64     // 按下时刻（秒）

	// Holding 是否抓住了拖拽源（dragToTarget 步骤）
	Holding bool
}

// Offset 当前位置相对按下位置的位移
func (d *DragSession) Offset() (float64, float64) {
	return d.Current.X - d.Origin.X, d.Current.Y - d.Origin.Y
}
