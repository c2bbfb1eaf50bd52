// internal/game/game_test.go
package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(rank models.Rank, suit models.Suit) models.Card {
	return models.NewCard(rank, suit)
}

// setupTestGame builds a game in the PLAY phase with hand-placed cards, so
// tests can arrange exact tables and piles.
func setupTestGame(t *testing.T, numPlayers int) *DaketiGame {
	t.Helper()
	g := &DaketiGame{
		ID:          uuid.New(),
		Config:      models.GameConfig{NumPlayers: numPlayers},
		Deck:        []models.Card{},
		FaceUpCards: []models.Card{},
		TurnPhase:   PhasePlay,
	}
	for i := 0; i < numPlayers; i++ {
		g.Players = append(g.Players, models.NewBotPlayer(i, fmt.Sprintf("Bot %d", i)))
	}
	return g
}

// snapshot captures everything an action may mutate, for no-op assertions.
type snapshot struct {
	Deck    []models.Card
	FaceUp  []models.Card
	Hands   [][]models.Card
	Piles   [][]models.Card
	Current int
	Phase   TurnPhase
}

func takeSnapshot(g *DaketiGame) snapshot {
	s := snapshot{
		Deck:    cloneCards(g.Deck),
		FaceUp:  cloneCards(g.FaceUpCards),
		Current: g.CurrentPlayerIdx,
		Phase:   g.TurnPhase,
	}
	for _, p := range g.Players {
		s.Hands = append(s.Hands, cloneCards(p.Hand))
		s.Piles = append(s.Piles, cloneCards(p.Pile))
	}
	return s
}

func TestDeckIntegrity(t *testing.T) {
	configs := []models.GameConfig{
		{NumPlayers: 2, HandSize: 6, FaceUpSize: 6},
		{NumPlayers: 4, HandSize: 5, FaceUpSize: 4},
		{NumPlayers: 8, HandSize: 6, FaceUpSize: 4},
		{NumPlayers: 4, HandSize: 10, FaceUpSize: 12},
	}
	for _, cfg := range configs {
		g, err := NewSeededDaketiGame(cfg, rand.New(rand.NewPCG(1, 2)))
		require.NoError(t, err)

		all := cloneCards(g.Deck)
		all = append(all, g.FaceUpCards...)
		for _, p := range g.Players {
			require.Len(t, p.Hand, cfg.HandSize)
			all = append(all, p.Hand...)
		}
		require.Len(t, g.FaceUpCards, cfg.FaceUpSize)
		require.Len(t, all, models.DeckSize, "config %+v", cfg)

		ids := map[uuid.UUID]bool{}
		faces := map[string]int{}
		for _, c := range all {
			assert.False(t, ids[c.ID], "duplicate card id %s", c.ID)
			ids[c.ID] = true
			faces[string(c.Rank)+string(c.Suit)]++
		}
		for _, s := range models.Suits {
			for _, r := range models.Ranks {
				assert.Equal(t, 1, faces[string(r)+string(s)], "card %s%s", r, s)
			}
		}
	}
}

func TestNewGameRejectsBadConfig(t *testing.T) {
	_, err := NewDaketiGame(models.GameConfig{NumPlayers: 5, HandSize: 10, FaceUpSize: 10})
	require.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestNewGameDefaultsAndInitialPhase(t *testing.T) {
	g, err := NewDaketiGame(models.GameConfig{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGameConfig(), g.Config)
	assert.Equal(t, PhaseDraw, g.TurnPhase)
	assert.Equal(t, 0, g.CurrentPlayerIdx)
	for _, p := range g.Players {
		assert.True(t, p.IsBot)
	}

	full, err := NewDaketiGame(models.GameConfig{NumPlayers: 4, HandSize: 10, FaceUpSize: 12})
	require.NoError(t, err)
	assert.Empty(t, full.Deck)
	assert.Equal(t, PhasePlay, full.TurnPhase, "no draw phase when the deal consumed the deck")
}

func TestTurnPhaseGating(t *testing.T) {
	g, err := NewSeededDaketiGame(models.DefaultGameConfig(), rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	require.Equal(t, PhaseDraw, g.TurnPhase)

	before := takeSnapshot(g)
	_, err = g.Discard(0, 0)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Capture(0, 0)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Draw(1)
	assert.ErrorIs(t, err, ErrInvalidAction, "seat 1 is not current")
	assert.Equal(t, before, takeSnapshot(g))

	_, err = g.Draw(0)
	require.NoError(t, err)
	require.Equal(t, PhasePlay, g.TurnPhase)

	before = takeSnapshot(g)
	_, err = g.Draw(0)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Discard(1, 0)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Discard(0, 99)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Discard(0, -1)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Apply(0, models.GameAction{ActionType: models.ActionDiscard})
	assert.ErrorIs(t, err, ErrInvalidAction, "missing hand index")
	_, err = g.Apply(0, models.GameAction{ActionType: "SHUFFLE"})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, before, takeSnapshot(g))
}

func TestBasicDrawDiscard(t *testing.T) {
	g, err := NewSeededDaketiGame(models.DefaultGameConfig(), rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	top := g.Deck[len(g.Deck)-1]
	deckLen := len(g.Deck)

	res, err := g.Draw(0)
	require.NoError(t, err)
	assert.Equal(t, models.ActionDraw, res.Type)
	assert.Equal(t, top.ID, res.Details.Card.ID, "draw takes the top of the deck")
	assert.Len(t, g.Deck, deckLen-1)
	assert.Len(t, g.Players[0].Hand, models.DefaultHandSize+1)

	handCard := g.Players[0].Hand[2]
	res, err = g.Discard(0, 2)
	require.NoError(t, err)
	assert.Equal(t, handCard.ID, res.Details.Card.ID)
	assert.Equal(t, handCard.ID, g.FaceUpCards[len(g.FaceUpCards)-1].ID)
	assert.Len(t, g.Players[0].Hand, models.DefaultHandSize)
	assert.Equal(t, 1, g.CurrentPlayerIdx)
	assert.Equal(t, PhaseDraw, g.TurnPhase)
}

func TestDrawEmptyDeck(t *testing.T) {
	g := setupTestGame(t, 2)
	g.TurnPhase = PhaseDraw
	g.Players[0].Hand = []models.Card{card("2", models.Clubs)}

	_, err := g.Draw(0)
	require.ErrorIs(t, err, ErrEmptyDeck)
	assert.Equal(t, PhaseDraw, g.TurnPhase)
	assert.Len(t, g.Players[0].Hand, 1)
}

func TestCaptureOrderAndExtraTurn(t *testing.T) {
	g := setupTestGame(t, 3)
	k1, k2, k3 := card("K", models.Spades), card("K", models.Hearts), card("K", models.Clubs)
	q := card("Q", models.Diamonds)
	tableK, table5 := card("K", models.Diamonds), card("5", models.Hearts)
	played := card("K", models.Spades)

	g.Players[1].Pile = []models.Card{q, k1}
	g.Players[2].Pile = []models.Card{k2, k3}
	g.FaceUpCards = []models.Card{table5, tableK}
	g.Players[0].Hand = []models.Card{card("3", models.Clubs), played}
	g.Deck = []models.Card{card("9", models.Clubs)}

	res, err := g.Capture(0, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Details.Analysis)
	require.NotNil(t, res.Details.ExtraTurn)
	assert.True(t, *res.Details.ExtraTurn)
	assert.Len(t, res.Details.Analysis.StealTargets, 2)

	pileIDs := []uuid.UUID{}
	for _, c := range g.Players[0].Pile {
		pileIDs = append(pileIDs, c.ID)
	}
	assert.Equal(t, []uuid.UUID{k1.ID, k2.ID, k3.ID, tableK.ID, played.ID}, pileIDs,
		"steals in seat order, then table matches, then the played card")
	assert.Equal(t, []models.Card{q}, g.Players[1].Pile)
	assert.Empty(t, g.Players[2].Pile)
	assert.Equal(t, []models.Card{table5}, g.FaceUpCards)
	assert.Len(t, g.Players[0].Hand, 1)

	assert.Equal(t, 0, g.CurrentPlayerIdx, "capture with cards left keeps the turn")
	assert.Equal(t, PhaseDraw, g.TurnPhase)
}

func TestCaptureWithEmptyDeckAdvances(t *testing.T) {
	g := setupTestGame(t, 3)
	g.CurrentPlayerIdx = 2
	g.FaceUpCards = []models.Card{card("7", models.Hearts)}
	g.Players[2].Hand = []models.Card{card("7", models.Spades), card("2", models.Spades)}
	g.Players[0].Hand = []models.Card{card("4", models.Spades)}

	res, err := g.Capture(2, 0)
	require.NoError(t, err)
	assert.False(t, *res.Details.ExtraTurn)
	assert.Equal(t, 0, g.CurrentPlayerIdx, "wraps to seat 0")
	assert.Equal(t, PhasePlay, g.TurnPhase)
}

func TestCaptureWithoutMatchIsNoop(t *testing.T) {
	g := setupTestGame(t, 2)
	g.FaceUpCards = []models.Card{card("7", models.Hearts)}
	g.Players[0].Hand = []models.Card{card("8", models.Spades)}
	g.Players[1].Pile = []models.Card{card("9", models.Spades)}

	before := takeSnapshot(g)
	_, err := g.Capture(0, 0)
	require.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, before, takeSnapshot(g))
}

func TestSelfMatchOnlyCapture(t *testing.T) {
	g := setupTestGame(t, 2)
	own := card("J", models.Clubs)
	g.Players[0].Pile = []models.Card{own}
	g.Players[0].Hand = []models.Card{card("J", models.Hearts)}
	g.Players[1].Hand = []models.Card{card("2", models.Hearts)}

	res, err := g.Capture(0, 0)
	require.NoError(t, err)
	assert.True(t, res.Details.Analysis.SelfMatch)
	require.Len(t, g.Players[0].Pile, 2)
	assert.Equal(t, own.ID, g.Players[0].Pile[0].ID, "own pile is never re-captured")
}

func TestEndTurnSkipsEmptyHandsOnceDeckIsEmpty(t *testing.T) {
	g := setupTestGame(t, 4)
	g.CurrentPlayerIdx = 0
	g.Players[2].Hand = []models.Card{card("6", models.Clubs)}

	g.EndTurn()
	assert.Equal(t, 2, g.CurrentPlayerIdx)
	assert.Equal(t, PhasePlay, g.TurnPhase)

	g.Deck = []models.Card{card("6", models.Hearts)}
	g.EndTurn()
	assert.Equal(t, 3, g.CurrentPlayerIdx, "with a deck every seat gets its turn")
	assert.Equal(t, PhaseDraw, g.TurnPhase)
}

func TestIsGameOver(t *testing.T) {
	g := setupTestGame(t, 2)
	assert.True(t, g.IsGameOver())

	g.Players[1].Hand = []models.Card{card("A", models.Spades)}
	assert.False(t, g.IsGameOver(), "a hand still holds cards")

	g.Players[1].Hand = nil
	g.Deck = []models.Card{card("A", models.Spades)}
	assert.False(t, g.IsGameOver(), "deck still holds cards")

	g.Deck = nil
	_, err := g.Discard(0, 0)
	assert.ErrorIs(t, err, ErrInvalidAction, "no action after game over")
}

// TestScriptedGame drives a fixed deck through draw, discard and capture and
// checks the exact piles and scores.
func TestScriptedGame(t *testing.T) {
	kh, d7, c7 := card("K", models.Hearts), card("7", models.Diamonds), card("7", models.Clubs)
	s9, s7, ks := card("9", models.Spades), card("7", models.Spades), card("K", models.Spades)
	deck := []models.Card{kh, d7, c7, s9, s7, ks}

	g, err := NewDaketiGameWithDeck(models.GameConfig{NumPlayers: 2, HandSize: 1, FaceUpSize: 1}, deck)
	require.NoError(t, err)
	require.Equal(t, []models.Card{ks}, g.Players[0].Hand)
	require.Equal(t, []models.Card{s7}, g.Players[1].Hand)
	require.Equal(t, []models.Card{s9}, g.FaceUpCards)
	require.Equal(t, []models.Card{kh, d7, c7}, g.Deck)

	_, err = g.Draw(0)
	require.NoError(t, err)
	_, err = g.Capture(0, 1)
	require.ErrorIs(t, err, ErrInvalidAction, "7♣ matches nothing yet")
	_, err = g.Discard(0, 1)
	require.NoError(t, err)
	require.Equal(t, 1, g.CurrentPlayerIdx)

	_, err = g.Draw(1)
	require.NoError(t, err)
	res, err := g.Capture(1, 0)
	require.NoError(t, err)
	assert.True(t, *res.Details.ExtraTurn)
	assert.Equal(t, []models.Card{c7, s7}, g.Players[1].Pile)
	require.Equal(t, 1, g.CurrentPlayerIdx)

	_, err = g.Draw(1)
	require.NoError(t, err)
	require.Empty(t, g.Deck)
	res, err = g.Capture(1, 0)
	require.NoError(t, err)
	assert.True(t, res.Details.Analysis.SelfMatch)
	assert.False(t, *res.Details.ExtraTurn)
	require.Equal(t, 0, g.CurrentPlayerIdx)
	require.Equal(t, PhasePlay, g.TurnPhase)

	_, err = g.Capture(0, 0)
	require.ErrorIs(t, err, ErrInvalidAction)
	_, err = g.Discard(0, 0)
	require.NoError(t, err)
	assert.False(t, g.IsGameOver())

	_, err = g.Capture(1, 0)
	require.NoError(t, err)
	assert.True(t, g.IsGameOver())

	assert.Equal(t, []models.Card{c7, s7, d7, ks, kh}, g.Players[1].Pile)
	assert.Equal(t, []models.Card{s9}, g.FaceUpCards)
	assert.Equal(t, []int{0, 35}, g.Scores())
}
