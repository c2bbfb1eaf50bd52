package game

import (
	"math/rand/v2"
	"testing"

	"github.com/jason-s-yu/daketi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotPriority(t *testing.T) {
	steal := StealTarget{OpponentID: 1, Cards: []models.Card{card("2", models.Clubs)}}
	table := []models.Card{card("2", models.Hearts)}

	assert.Equal(t, 1, BotPriority(CaptureAnalysis{}))
	assert.Equal(t, 6, BotPriority(CaptureAnalysis{CanCapture: true, SelfMatch: true}))
	assert.Equal(t, 7, BotPriority(CaptureAnalysis{CanCapture: true, TableMatch: table}))
	assert.Equal(t, 6, BotPriority(CaptureAnalysis{CanCapture: true, StealTargets: []StealTarget{steal}}))
	assert.Equal(t, 10, BotPriority(CaptureAnalysis{
		CanCapture:   true,
		StealTargets: []StealTarget{steal, steal},
		TableMatch:   table,
		SelfMatch:    true,
	}))
}

func TestGreedyDrawsInDrawPhase(t *testing.T) {
	g := setupTestGame(t, 2)
	g.TurnPhase = PhaseDraw
	move := GreedyStrategy{}.ChooseMove(g, 0)
	assert.Equal(t, models.ActionDraw, move.ActionType)
	assert.Nil(t, move.HandIndex)
}

func TestGreedyPicksBestCapture(t *testing.T) {
	g := setupTestGame(t, 2)
	g.FaceUpCards = []models.Card{card("4", models.Hearts)}
	g.Players[0].Pile = []models.Card{card("9", models.Clubs)}
	g.Players[0].Hand = []models.Card{
		card("2", models.Spades), // nothing
		card("9", models.Spades), // self match: 6
		card("4", models.Spades), // table match: 7
	}

	move := GreedyStrategy{}.ChooseMove(g, 0)
	require.Equal(t, models.ActionCapture, move.ActionType)
	require.NotNil(t, move.HandIndex)
	assert.Equal(t, 2, *move.HandIndex)
}

func TestGreedyTieKeepsFirstIndex(t *testing.T) {
	g := setupTestGame(t, 2)
	g.FaceUpCards = []models.Card{card("4", models.Hearts), card("6", models.Hearts)}
	g.Players[0].Hand = []models.Card{card("2", models.Spades), card("6", models.Spades), card("4", models.Spades)}

	move := GreedyStrategy{}.ChooseMove(g, 0)
	require.Equal(t, models.ActionCapture, move.ActionType)
	assert.Equal(t, 1, *move.HandIndex)
}

func TestGreedyDiscardsFirstCard(t *testing.T) {
	g := setupTestGame(t, 2)
	g.FaceUpCards = []models.Card{card("4", models.Hearts)}
	g.Players[0].Hand = []models.Card{card("2", models.Spades), card("A", models.Spades)}

	move := GreedyStrategy{}.ChooseMove(g, 0)
	require.Equal(t, models.ActionDiscard, move.ActionType)
	assert.Equal(t, 0, *move.HandIndex)
}

func TestAllBotGameFinishes(t *testing.T) {
	configs := []models.GameConfig{
		models.DefaultGameConfig(),
		{NumPlayers: 4, HandSize: 4, FaceUpSize: 4},
		{NumPlayers: 8, HandSize: 6, FaceUpSize: 4},
		{NumPlayers: 3, HandSize: 8, FaceUpSize: 0},
	}
	for i, cfg := range configs {
		g, err := NewSeededDaketiGame(cfg, rand.New(rand.NewPCG(uint64(i), 99)))
		require.NoError(t, err)
		g.Players[i%cfg.NumPlayers].IsCheater = true

		for steps := 0; !g.IsGameOver(); steps++ {
			require.Less(t, steps, 1000, "game %d did not finish", i)
			_, err := g.PlayBotTurn(GreedyStrategy{})
			require.NoError(t, err)
		}

		total := len(g.FaceUpCards)
		for _, p := range g.Players {
			assert.Empty(t, p.Hand)
			total += len(p.Pile)
		}
		assert.Equal(t, models.DeckSize, total, "no card created or lost")
	}
}
