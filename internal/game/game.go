// Package game holds the lifecycle of a single drop-token match: players,
// turn order, move records and terminal handling on top of the bitboard.
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drop-token/internal/bitboard"
	"github.com/drop-token/internal/engine"
)

// Player identifiers. Player1 always moves first.
const (
	Player1 = 1
	Player2 = 2
)

// engineDepth is the search depth used for bot games; configurable once at
// startup via SetEngineDepth.
var engineDepth = engine.DefaultDepth

// SetEngineDepth overrides the search depth for newly created bot games.
// Call once during startup, before any game exists.
func SetEngineDepth(depth int) {
	if depth >= 1 {
		engineDepth = depth
	}
}

// EngineSearchDepth returns the configured bot search depth.
func EngineSearchDepth() int {
	return engineDepth
}

// GameStatus represents the current state of the game
type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusPlaying    GameStatus = "playing"
	StatusFinished   GameStatus = "finished"
	StatusDisconnect GameStatus = "disconnected"
)

// GameResult represents the outcome of a game
type GameResult string

const (
	ResultWinPlayer1 GameResult = "player1_win"
	ResultWinPlayer2 GameResult = "player2_win"
	ResultDraw       GameResult = "draw"
	ResultForfeit    GameResult = "forfeit"
)

// Player represents a player in the game
type Player struct {
	Username    string
	PlayerNum   int // Player1 or Player2
	IsBot       bool
	IsConnected bool
}

// Move represents a single move in the game. Row counts from the top of the
// board, matching the serialized grid.
type Move struct {
	PlayerNum int       `json:"playerNum"`
	Column    int       `json:"column"`
	Row       int       `json:"row"`
	Timestamp time.Time `json:"timestamp"`
}

// Game represents a drop-token game instance. The board keeps Player2's
// stones on the own side, so in bot games the engine always searches from
// its own perspective.
type Game struct {
	ID                 string
	Player1            *Player
	Player2            *Player
	Board              bitboard.Board
	CurrentTurn        int // Player1 or Player2
	Status             GameStatus
	Winner             *Player
	Result             GameResult
	Moves              []Move
	StartTime          time.Time
	EndTime            time.Time
	DisconnectTime     time.Time
	DisconnectedPlayer int
	Engine             *engine.Worker
	mu                 sync.RWMutex
}

// NewGame creates a new game instance
func NewGame(player1Username string) *Game {
	board := bitboard.NewBoard()
	// Player1 moves first and occupies the opponent mask.
	board.SetFirstPlayerOwn(false)

	return &Game{
		ID: uuid.New().String(),
		Player1: &Player{
			Username:    player1Username,
			PlayerNum:   Player1,
			IsBot:       false,
			IsConnected: true,
		},
		Board:       board,
		CurrentTurn: Player1,
		Status:      StatusWaiting,
		Moves:       make([]Move, 0),
		StartTime:   time.Now(),
	}
}

// AddPlayer2 adds the second player to the game
func (g *Game) AddPlayer2(username string, isBot bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Player2 = &Player{
		Username:    username,
		PlayerNum:   Player2,
		IsBot:       isBot,
		IsConnected: true,
	}
	g.Status = StatusPlaying

	if isBot {
		g.Engine = engine.NewWorker(engineDepth)
	}
}

// CloseEngine shuts down the bot worker; called when the game is removed.
func (g *Game) CloseEngine() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Engine != nil {
		g.Engine.Close()
		g.Engine = nil
	}
}

// MakeMove makes a move for the specified player and returns the top-based
// landing row.
func (g *Game) MakeMove(playerNum, column int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusPlaying {
		return -1, ErrGameNotInProgress
	}

	if g.CurrentTurn != playerNum {
		return -1, ErrNotYourTurn
	}

	if column < 0 || column >= bitboard.Width {
		return -1, ErrInvalidColumn
	}

	// The zero landing mask is the core's "column full" sentinel; it becomes
	// an error value only at this layer.
	row, ok := g.Board.ApplyColumn(column, playerNum == Player2)
	if !ok {
		return -1, ErrColumnFull
	}
	topRow := bitboard.Height - 1 - row

	g.Moves = append(g.Moves, Move{
		PlayerNum: playerNum,
		Column:    column,
		Row:       topRow,
		Timestamp: time.Now(),
	})

	switch result, _ := g.Board.Status(); result {
	case bitboard.FirstPlayerWon:
		g.finishWithWinner(g.Player1, ResultWinPlayer1)
		return topRow, nil
	case bitboard.SecondPlayerWon:
		g.finishWithWinner(g.Player2, ResultWinPlayer2)
		return topRow, nil
	case bitboard.Draw:
		g.Status = StatusFinished
		g.EndTime = time.Now()
		g.Result = ResultDraw
		return topRow, nil
	}

	if g.CurrentTurn == Player1 {
		g.CurrentTurn = Player2
	} else {
		g.CurrentTurn = Player1
	}

	return topRow, nil
}

// finishWithWinner marks the game finished; callers hold the lock.
func (g *Game) finishWithWinner(winner *Player, result GameResult) {
	g.Status = StatusFinished
	g.EndTime = time.Now()
	g.Winner = winner
	g.Result = result
}

// MakeBotMove runs the engine on a board snapshot and plays the resulting
// column. It blocks for the duration of the search.
func (g *Game) MakeBotMove() (int, int, error) {
	g.mu.Lock()
	if g.Engine == nil || g.CurrentTurn != Player2 {
		g.mu.Unlock()
		return -1, -1, ErrNotYourTurn
	}
	// Snapshot by value; the worker never touches the live board.
	snapshot := g.Board
	worker := g.Engine
	g.mu.Unlock()

	worker.Post(snapshot)
	column := worker.Result()

	row, err := g.MakeMove(Player2, column)
	return column, row, err
}

// PlayerDisconnected marks a player as disconnected
func (g *Game) PlayerDisconnected(playerNum int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusPlaying {
		return
	}

	g.DisconnectedPlayer = playerNum
	g.DisconnectTime = time.Now()
	g.Status = StatusDisconnect

	if playerNum == Player1 {
		g.Player1.IsConnected = false
	} else {
		g.Player2.IsConnected = false
	}
}

// PlayerReconnected marks a player as reconnected
func (g *Game) PlayerReconnected(playerNum int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusDisconnect || g.DisconnectedPlayer != playerNum {
		return false
	}

	// Check if within 30-second window
	if time.Since(g.DisconnectTime) > 30*time.Second {
		return false
	}

	g.Status = StatusPlaying
	g.DisconnectedPlayer = 0
	g.DisconnectTime = time.Time{}

	if playerNum == Player1 {
		g.Player1.IsConnected = true
	} else {
		g.Player2.IsConnected = true
	}

	return true
}

// Forfeit ends the game with a forfeit
func (g *Game) Forfeit(loserPlayerNum int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Status = StatusFinished
	g.EndTime = time.Now()
	g.Result = ResultForfeit

	if loserPlayerNum == Player1 {
		g.Winner = g.Player2
	} else {
		g.Winner = g.Player1
	}
}

// boardGrid serializes the bitboard into the wire grid: grid[0] is the top
// row, cell values are 0/Player1/Player2.
func boardGrid(b *bitboard.Board) [][]int {
	grid := make([][]int, bitboard.Height)
	for i := range grid {
		grid[i] = make([]int, bitboard.Width)
	}
	for _, stone := range b.Stones() {
		player := Player2
		if stone.FirstPlayer {
			player = Player1
		}
		grid[bitboard.Height-1-stone.Row][stone.Column] = player
	}
	return grid
}

// winningLine converts the winning cells to top-based grid coordinates.
func winningLine(cells []bitboard.Cell) []MoveInfo {
	if len(cells) == 0 {
		return nil
	}
	line := make([]MoveInfo, 0, len(cells))
	for _, c := range cells {
		line = append(line, MoveInfo{Column: c.Column, Row: bitboard.Height - 1 - c.Row})
	}
	return line
}

// GetState returns the current game state for serialization
func (g *Game) GetState() *GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, winCells := g.Board.Status()

	state := &GameState{
		ID:          g.ID,
		Board:       boardGrid(&g.Board),
		CurrentTurn: g.CurrentTurn,
		Status:      g.Status,
		MoveCount:   len(g.Moves),
		WinningLine: winningLine(winCells),
	}

	if g.Player1 != nil {
		state.Player1 = g.Player1.Username
	}
	if g.Player2 != nil {
		state.Player2 = g.Player2.Username
		state.IsVsBot = g.Player2.IsBot
	}
	if g.Winner != nil {
		state.Winner = g.Winner.Username
	}
	if len(g.Moves) > 0 {
		lastMove := g.Moves[len(g.Moves)-1]
		state.LastMove = &MoveInfo{
			Column: lastMove.Column,
			Row:    lastMove.Row,
		}
	}
	if g.Result != "" {
		state.Result = string(g.Result)
	}

	return state
}

// GetPlayerByUsername returns the player number for a username
func (g *Game) GetPlayerByUsername(username string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.Player1 != nil && g.Player1.Username == username {
		return Player1
	}
	if g.Player2 != nil && g.Player2.Username == username {
		return Player2
	}
	return 0
}

// GetDuration returns the game duration in seconds
func (g *Game) GetDuration() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.EndTime.IsZero() {
		return int(time.Since(g.StartTime).Seconds())
	}
	return int(g.EndTime.Sub(g.StartTime).Seconds())
}

// EngineDepth returns the search depth of the bot worker, or 0 for
// player-versus-player games.
func (g *Game) EngineDepth() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.Engine == nil {
		return 0
	}
	return engineDepth
}

// GameState represents the serializable game state
type GameState struct {
	ID          string     `json:"id"`
	Player1     string     `json:"player1"`
	Player2     string     `json:"player2"`
	IsVsBot     bool       `json:"isVsBot"`
	Board       [][]int    `json:"board"`
	CurrentTurn int        `json:"currentTurn"`
	Status      GameStatus `json:"status"`
	Winner      string     `json:"winner,omitempty"`
	Result      string     `json:"result,omitempty"`
	LastMove    *MoveInfo  `json:"lastMove,omitempty"`
	WinningLine []MoveInfo `json:"winningLine,omitempty"`
	MoveCount   int        `json:"moveCount"`
}

// MoveInfo represents info about a move
type MoveInfo struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Errors
var (
	ErrGameNotInProgress = &GameError{"game is not in progress"}
	ErrNotYourTurn       = &GameError{"not your turn"}
	ErrGameNotFound      = &GameError{"game not found"}
	ErrPlayerNotFound    = &GameError{"player not found"}
	ErrInvalidColumn     = &GameError{"invalid column"}
	ErrColumnFull        = &GameError{"column is full"}
)

type GameError struct {
	msg string
}

func (e *GameError) Error() string {
	return e.msg
}
