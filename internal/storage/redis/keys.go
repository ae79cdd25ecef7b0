package redis

import (
	"fmt"

	"github.com/mcoot/aicardgame-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "cardgame"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// gameStateKey returns the Redis key for a GameState
func gameStateKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:game-state:%s", keyPrefix, id)
}

// gameStatesIndexKey returns the Redis key for the SET of players with a GameState
func gameStatesIndexKey() string {
	return fmt.Sprintf("%s:idx:game_states", keyPrefix)
}

// matchKey returns the Redis key for a PvPMatch
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// playerMatchesIndexKey returns the Redis key for the ZSET of a player's matches by start time
func playerMatchesIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:matches:%s", keyPrefix, playerID)
}

// rankingsKey returns the Redis key for the ranking snapshot
func rankingsKey() string {
	return fmt.Sprintf("%s:rankings", keyPrefix)
}

// queueEntriesKey returns the Redis key for the HASH of queue entries by player
func queueEntriesKey() string {
	return fmt.Sprintf("%s:queue:entries", keyPrefix)
}

// queuePoolKey returns the Redis key for the ZSET of queued players in a
// mode and genre, scored by rating
func queuePoolKey(mode model.BattleMode, genre model.Genre) string {
	return fmt.Sprintf("%s:queue:%s:%s", keyPrefix, mode, genre)
}

// assignmentKey returns the Redis key for a player's pending match assignment
func assignmentKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:queue:assignment:%s", keyPrefix, playerID)
}
