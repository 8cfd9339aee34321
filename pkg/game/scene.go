package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one screen of the game (main menu, a minigame).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Leaver 是一个可选接口，场景被替换或程序退出时调用 OnLeave()
// 用于取消进行中的提交、停止循环音等
type Leaver interface {
	OnLeave()
}
