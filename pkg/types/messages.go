// Package types names the messages exchanged over the game websocket.
//
// Client -> Server
//
//	join_queue:   { name: string }
//	player_ready: { board: (shipId | 0 | null)[10][10], ships: { [shipId]: [row, col][] } }
//	fire:         { r: number, c: number }
//
// Server -> Client
//
//	waiting:                    { position: number }
//	game_found:                 { gameId, p1Name, p2Name, you: "p1" | "p2" }
//	you_are_ready:              {}
//	waiting_for_opponent_ready: {}
//	battle_start:               { turn: "p1" | "p2", log: string[] }
//	not_your_turn:              {}
//	shot_result:                { shooter, r, c, resultType: "miss" | "hit" | "sunk",
//	                              affectedCells: [row, col][], turn, phase, winner?, log: string[] }
//	opponent_disconnected:      {}
//	error:                      { error: string }
package types

const (
	JoinQueue   = "join_queue"
	PlayerReady = "player_ready"
	Fire        = "fire"
)

const (
	Waiting                 = "waiting"
	GameFound               = "game_found"
	YouAreReady             = "you_are_ready"
	WaitingForOpponentReady = "waiting_for_opponent_ready"
	BattleStart             = "battle_start"
	NotYourTurn             = "not_your_turn"
	ShotResult              = "shot_result"
	OpponentDisconnected    = "opponent_disconnected"
	Error                   = "error"
)
