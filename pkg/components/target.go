package components

import "github.com/jermochi/Hygin/pkg/types"

// TargetStatus 目标（细菌）状态
type TargetStatus int

const (
	// TargetActive 等待清除
	TargetActive TargetStatus = iota
	// TargetSuccess 已清除，展示成功效果后移除
	TargetSuccess
	// TargetFailed 超时未清除，展示失败效果后移除
	TargetFailed
)

func (s TargetStatus) String() string {
	switch s {
	case TargetActive:
		return "active"
	case TargetSuccess:
		return "success"
	case TargetFailed:
		return "failed"
	}
	return "unknown"
}

// TargetComponent 目标组件
// 一个限时的清除目标，需要若干个笔画单元才能清除
//
// Progress 由整数 Received 推导：(Required - Received) / Required，
// 因此恰好 Required 个笔画单元时为 0
type TargetComponent struct {
	Position types.Point // 参考坐标系中的位置（像素）
	Norm     types.Point // 相对步骤区域的比例坐标
	Radius   float64     // 显示与命中半径（像素）

	Required int     // 清除所需笔画单元
	Received int     // 已收到的笔画单元
	Progress float64 // 1 = 刚生成，0 = 已清除

	Status    TargetStatus
	SpawnedAt float64 // 生成时刻（调度器时间，秒）

	// Generation 生成该目标时的步骤代数，用于丢弃过期回调
	Generation uint64
	// Source 生成位置来源："mask"、"anchor"、"band"
	Source string
}
