package domain

import "errors"

// Domain errors
var (
	ErrInvalidName             = errors.New("name is empty or invalid")
	ErrCodeAllocationExhausted = errors.New("could not allocate a unique room code")
	ErrRoomNotFound            = errors.New("room not found")
	ErrRoomNotJoinable         = errors.New("room is not accepting new players")
	ErrRoomFull                = errors.New("room is full")
	ErrNameTaken               = errors.New("name is already taken in this room")
	ErrPlayerNotFound          = errors.New("player not found")
	ErrNotBound                = errors.New("connection does not control this player")
	ErrNotHost                 = errors.New("only the host can perform this action")
	ErrWrongPhase              = errors.New("invalid action for current phase")
	ErrNotEnoughPlayers        = errors.New("not enough connected players to start")
	ErrNotYourTurn             = errors.New("it is not your turn")
	ErrPlayerNotEligible       = errors.New("player is not in the match")
	ErrInvalidWord             = errors.New("word must be at least 3 lowercase letters")
	ErrMissingChunk            = errors.New("word does not contain the required letters")
	ErrWordAlreadyUsed         = errors.New("word has already been used this match")
	ErrNotInDictionary         = errors.New("word is not in the dictionary")
	ErrRateLimited             = errors.New("submitting too fast, slow down")
)
