package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene records calls for testing.
type MockScene struct {
	route        string
	updateCalled bool
	drawCalled   bool
	left         bool
	deltaTime    float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

func (m *MockScene) OnLeave() {
	m.left = true
}

func newTestRouter(locked map[string]bool) (*SceneManager, map[string][]*MockScene) {
	created := make(map[string][]*MockScene)
	sm := NewSceneManager()
	factory := func(route string) Scene {
		s := &MockScene{route: route}
		created[route] = append(created[route], s)
		return s
	}
	for _, r := range []string{RouteHome, "/hairwashing", "/toothbrushing"} {
		sm.Register(r, factory)
	}
	sm.SetGuard(func(route string) bool { return !locked[route] })
	return sm, created
}

func TestSceneManagerNavigate(t *testing.T) {
	sm, created := newTestRouter(nil)

	sm.Navigate("/hairwashing")
	if sm.GetCurrentScene() != nil {
		t.Fatal("navigation is applied on the next update")
	}
	sm.Update(0.016)
	if sm.CurrentRoute() != "/hairwashing" {
		t.Fatalf("expected /hairwashing, got %q", sm.CurrentRoute())
	}
	first := created["/hairwashing"][0]
	if !first.updateCalled || first.deltaTime != 0.016 {
		t.Error("the new scene must be updated in the same frame")
	}

	sm.Navigate(RouteHome)
	sm.Update(0.016)
	if !first.left {
		t.Error("the previous scene must be notified when replaced")
	}
	sm.Draw(nil)
	if !created[RouteHome][0].drawCalled {
		t.Error("Draw must reach the current scene")
	}
}

func TestSceneManagerGuard(t *testing.T) {
	tests := []struct {
		name   string
		route  string
		locked map[string]bool
		want   string
	}{
		{"允许进入", "/toothbrushing", nil, "/toothbrushing"},
		{"未解锁重定向主页", "/toothbrushing", map[string]bool{"/toothbrushing": true}, RouteHome},
		{"未知路由重定向主页", "/nowhere", nil, RouteHome},
		{"主页不受守卫影响", RouteHome, map[string]bool{RouteHome: true}, RouteHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, _ := newTestRouter(tt.locked)
			sm.Navigate(tt.route)
			sm.Update(0)
			if sm.CurrentRoute() != tt.want {
				t.Errorf("Navigate(%q) landed on %q, want %q", tt.route, sm.CurrentRoute(), tt.want)
			}
		})
	}
}

func TestSceneManagerEmpty(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016)
	sm.Draw(nil)
	sm.Navigate("/hairwashing")
	sm.Update(0.016)
	if sm.GetCurrentScene() != nil {
		t.Error("no scene can be created without routes")
	}

	scene := &MockScene{}
	sm.SwitchTo(scene)
	sm.Close()
	if !scene.left || sm.GetCurrentScene() != nil {
		t.Error("Close must leave the current scene")
	}
}
