// internal/models/game_config.go
package models

import (
	"errors"
	"fmt"
)

const (
	DefaultNumPlayers = 2
	DefaultHandSize   = 6
	DefaultFaceUpSize = 6

	MinPlayers = 2
	MaxPlayers = 8
	DeckSize   = 52
)

// ErrInvalidConfig is returned when a room is requested with an impossible table layout.
var ErrInvalidConfig = errors.New("invalid game config")

// GameConfig is the table layout chosen by the host when the room is created.
type GameConfig struct {
	NumPlayers int `json:"numPlayers"`
	HandSize   int `json:"handSize"`
	FaceUpSize int `json:"faceUpSize"`
}

// DefaultGameConfig returns the layout used when the host sends no config.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		NumPlayers: DefaultNumPlayers,
		HandSize:   DefaultHandSize,
		FaceUpSize: DefaultFaceUpSize,
	}
}

// WithDefaults fills zero-valued fields from DefaultGameConfig.
func (c GameConfig) WithDefaults() GameConfig {
	if c.NumPlayers == 0 {
		c.NumPlayers = DefaultNumPlayers
	}
	if c.HandSize == 0 {
		c.HandSize = DefaultHandSize
	}
	if c.FaceUpSize == 0 {
		c.FaceUpSize = DefaultFaceUpSize
	}
	return c
}

// Validate checks that the layout can be dealt from a single deck.
func (c GameConfig) Validate() error {
	if c.NumPlayers < MinPlayers || c.NumPlayers > MaxPlayers {
		return fmt.Errorf("%w: numPlayers must be between %d and %d, got %d", ErrInvalidConfig, MinPlayers, MaxPlayers, c.NumPlayers)
	}
	if c.HandSize < 1 {
		return fmt.Errorf("%w: handSize must be positive, got %d", ErrInvalidConfig, c.HandSize)
	}
	if c.FaceUpSize < 0 {
		return fmt.Errorf("%w: faceUpSize must be non-negative, got %d", ErrInvalidConfig, c.FaceUpSize)
	}
	if need := c.NumPlayers*c.HandSize + c.FaceUpSize; need > DeckSize {
		return fmt.Errorf("%w: layout needs %d cards, deck has %d", ErrInvalidConfig, need, DeckSize)
	}
	return nil
}
