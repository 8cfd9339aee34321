package game

import "testing"

func TestPlayerSession(t *testing.T) {
	gm := openTestGdata(t, "test_hygin_session")

	ps := NewPlayerSession(gm)
	if ps.Active() {
		t.Fatal("expected no player at first start")
	}
	if err := ps.Set("", "nobody"); err == nil {
		t.Error("expected an error for an empty id")
	}
	if err := ps.Set("p-1", "Mia"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	reloaded := NewPlayerSession(gm)
	if reloaded.PlayerID() != "p-1" || reloaded.Player().Name != "Mia" {
		t.Fatalf("expected the player after reload, got %+v", reloaded.Player())
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if NewPlayerSession(gm).Active() {
		t.Error("expected the session cleared after reload")
	}
}

func TestPlayerSessionDegraded(t *testing.T) {
	ps := NewPlayerSession(nil)
	if err := ps.Set("p-2", "Leo"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if ps.PlayerID() != "p-2" {
		t.Errorf("expected in-memory player, got %q", ps.PlayerID())
	}
}
