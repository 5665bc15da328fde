package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
)

func newTestConsumer() *Consumer {
	return &Consumer{
		metrics: &AnalyticsMetrics{
			WinCounts:    make(map[string]int),
			GamesPerHour: make(map[string]int),
			GamesPerDay:  make(map[string]int),
			PlayerStats:  make(map[string]*PlayerMetrics),
		},
	}
}

func deliver(t *testing.T, c *Consumer, event GameEvent) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	c.processMessage(&sarama.ConsumerMessage{Value: data})
}

func TestConsumerAggregatesGameLifecycle(t *testing.T) {
	c := newTestConsumer()
	now := time.Now()

	deliver(t, c, GameEvent{
		Type:      EventGameStart,
		GameID:    "g1",
		Timestamp: now,
		Data:      GameStartData{Player1: "alice", Player2: "BOT", IsVsBot: true},
	})
	deliver(t, c, GameEvent{
		Type:      EventMove,
		GameID:    "g1",
		Timestamp: now,
		Data:      MoveData{Player: "alice", Column: 3, Row: 5, MoveNum: 1},
	})
	deliver(t, c, GameEvent{
		Type:      EventGameEnd,
		GameID:    "g1",
		Timestamp: now,
		Data:      GameEndData{Winner: "alice", Result: "player1_win", DurationSeconds: 40, TotalMoves: 9, IsVsBot: true},
	})

	m := c.GetMetrics()
	if m.TotalGames != 1 || m.BotGames != 1 {
		t.Errorf("games = %d (bot %d), want 1/1", m.TotalGames, m.BotGames)
	}
	if m.TotalMoves != 1 {
		t.Errorf("moves = %d, want 1", m.TotalMoves)
	}
	if m.WinCounts["alice"] != 1 {
		t.Errorf("alice wins = %d, want 1", m.WinCounts["alice"])
	}
	if m.PlayerStats["BOT"] != nil {
		t.Errorf("bot must not appear in player stats")
	}
	if got := c.GetAverageGameDuration(); got != 40 {
		t.Errorf("avg duration = %v, want 40", got)
	}
	if got := c.GetMostFrequentWinner(); got != "alice" {
		t.Errorf("most frequent winner = %q, want alice", got)
	}
}

func TestConsumerTracksEngineMoves(t *testing.T) {
	c := newTestConsumer()
	now := time.Now()

	for _, elapsed := range []int64{10, 30} {
		deliver(t, c, GameEvent{
			Type:      EventEngineMove,
			GameID:    "g1",
			Timestamp: now,
			Data:      EngineMoveData{Column: 3, SearchDepth: 12, ElapsedMs: elapsed},
		})
	}

	m := c.GetMetrics()
	if m.EngineMoves != 2 {
		t.Errorf("engine moves = %d, want 2", m.EngineMoves)
	}
	if m.EngineThinkMs != 40 {
		t.Errorf("engine think ms = %d, want 40", m.EngineThinkMs)
	}
	if got := c.GetAverageEngineThinkMs(); got != 20 {
		t.Errorf("avg think ms = %v, want 20", got)
	}
}

func TestConsumerIgnoresMalformedMessages(t *testing.T) {
	c := newTestConsumer()
	c.processMessage(&sarama.ConsumerMessage{Value: []byte("not json")})

	if m := c.GetMetrics(); m.TotalGames != 0 || m.TotalMoves != 0 {
		t.Fatalf("malformed message changed metrics: %+v", m)
	}
}
