package matchmaker

import (
	"testing"
	"time"

	"github.com/drop-token/internal/game"
)

func TestJoinQueueMatchesTwoPlayers(t *testing.T) {
	m := NewMatchmaker()

	aliceChan, err := m.JoinQueue("alice")
	if err != nil {
		t.Fatalf("alice join: %v", err)
	}
	if m.GetWaitingCount() != 1 {
		t.Fatalf("waiting count = %d, want 1", m.GetWaitingCount())
	}

	bobChan, err := m.JoinQueue("bob")
	if err != nil {
		t.Fatalf("bob join: %v", err)
	}

	var aliceGame, bobGame *game.Game
	select {
	case aliceGame = <-aliceChan:
	case <-time.After(time.Second):
		t.Fatalf("alice never got matched")
	}
	select {
	case bobGame = <-bobChan:
	case <-time.After(time.Second):
		t.Fatalf("bob never got matched")
	}

	if aliceGame.ID != bobGame.ID {
		t.Fatalf("players matched into different games")
	}
	if m.GetActiveGameCount() != 1 {
		t.Fatalf("active games = %d, want 1", m.GetActiveGameCount())
	}
	if m.GetWaitingCount() != 0 {
		t.Fatalf("waiting count = %d, want 0", m.GetWaitingCount())
	}

	if got := m.GetGameByPlayer("alice"); got == nil || got.ID != aliceGame.ID {
		t.Fatalf("lookup by player failed")
	}
	if got := m.GetGame(aliceGame.ID); got == nil {
		t.Fatalf("lookup by id failed")
	}
}

func TestGameStartCallback(t *testing.T) {
	m := NewMatchmaker()
	started := make(chan *game.Game, 1)
	m.SetOnGameStart(func(g *game.Game) { started <- g })

	m.JoinQueue("alice")
	m.JoinQueue("bob")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("game start callback never fired")
	}
}

func TestLeaveQueue(t *testing.T) {
	m := NewMatchmaker()

	ch, _ := m.JoinQueue("alice")
	m.LeaveQueue("alice")

	if m.GetWaitingCount() != 0 {
		t.Fatalf("waiting count = %d after leave, want 0", m.GetWaitingCount())
	}
	select {
	case g, ok := <-ch:
		if ok && g != nil {
			t.Fatalf("left player still got matched")
		}
	default:
	}
}

func TestRemoveGame(t *testing.T) {
	m := NewMatchmaker()
	m.JoinQueue("alice")
	bobChan, _ := m.JoinQueue("bob")
	g := <-bobChan

	m.RemoveGame(g.ID)
	if m.GetActiveGameCount() != 0 {
		t.Fatalf("active games = %d after remove, want 0", m.GetActiveGameCount())
	}
	if m.GetGameByPlayer("alice") != nil {
		t.Fatalf("player mapping survived game removal")
	}
}
