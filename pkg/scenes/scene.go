package scenes

import (
	"math/rand"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/scores"
	"github.com/jermochi/Hygin/pkg/systems"
)

// Scene is a type alias for game.Scene.
type Scene = game.Scene

const (
	// WindowWidth is the logical width of the game window in pixels.
	WindowWidth = config.GameWindowWidth
	// WindowHeight is the logical height of the game window in pixels.
	WindowHeight = config.GameWindowHeight
)

// Services bundles the long-lived managers every scene reads from.
//
// Audio and Submitter may be nil: a nil Audio plays nothing and a nil
// Submitter leaves scores unsaved (SubmitSkipped).
type Services struct {
	Resources *game.ResourceManager
	Audio     *game.AudioManager
	Scenes    *game.SceneManager
	Catalog   *config.GameCatalog
	Profile   *game.Profile
	Submitter *scores.Submitter
	// Rand seeds target placement; nil uses a time-based source.
	Rand *rand.Rand
}

// scoreSubmitter avoids handing a typed nil pointer to the shell.
func (s *Services) scoreSubmitter() systems.ScoreSubmitter {
	if s.Submitter == nil {
		return nil
	}
	return s.Submitter
}
