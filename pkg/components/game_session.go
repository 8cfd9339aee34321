package components

// GameSession 单次游戏会话（一次从开场到完成/失败的游玩）
//
// 不变式：
//   - CurrentStepIndex 只在显式重置时回退
//   - MistakeCount 只在显式重置时清零
//   - Score 不小于 0
type GameSession struct {
	GameID string

	CurrentStepIndex int
	SuccessCount     int // 当前步骤已清除的目标数，换步骤时清零
	MistakeCount     int // 整局累计错误数
	Score            float64

	Finished bool // 终止标记（完成或失败）
	Lost     bool

	HintsUsed  int
	WrongTools int
	Misses     int // 超时失败的目标数

	// Generation 会话/步骤代数，每次进入步骤或重置时递增
	Generation uint64
}

// Reset 清空会话（保留游戏ID并推进代数）
func (s *GameSession) Reset() {
	gen := s.Generation + 1
	*s = GameSession{GameID: s.GameID, Generation: gen}
}
