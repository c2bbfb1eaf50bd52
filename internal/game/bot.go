package game

import (
	"github.com/jason-s-yu/daketi/internal/models"
)

const (
	botBasePriority    = 1
	botCapturePriority = 5
	botTableBonus      = 2
	botSelfBonus       = 1
)

// Strategy decides the move for a bot-controlled seat.
type Strategy interface {
	ChooseMove(g *DaketiGame, seat int) models.GameAction
}

// GreedyStrategy is a one-ply heuristic: capture whatever scores best right
// now, otherwise throw away the first card in hand.
type GreedyStrategy struct{}

// BotPriority ranks a capture analysis for the greedy policy.
func BotPriority(a CaptureAnalysis) int {
	if !a.CanCapture {
		return botBasePriority
	}
	prio := botCapturePriority + len(a.StealTargets)
	if len(a.TableMatch) > 0 {
		prio += botTableBonus
	}
	if a.SelfMatch {
		prio += botSelfBonus
	}
	return prio
}

// ChooseMove draws in the DRAW phase; in the PLAY phase it captures with the
// highest-priority hand card (first index wins ties) or discards index 0.
func (GreedyStrategy) ChooseMove(g *DaketiGame, seat int) models.GameAction {
	if g.TurnPhase == PhaseDraw {
		return models.GameAction{ActionType: models.ActionDraw}
	}
	p := g.Players[seat]
	bestIdx, bestPrio := 0, 0
	for i, c := range p.Hand {
		prio := BotPriority(Analyze(g.FaceUpCards, g.Players, seat, c))
		if prio > bestPrio {
			bestIdx, bestPrio = i, prio
		}
	}
	if bestPrio > botBasePriority {
		return models.GameAction{ActionType: models.ActionCapture, HandIndex: &bestIdx}
	}
	zero := 0
	return models.GameAction{ActionType: models.ActionDiscard, HandIndex: &zero}
}

// PlayBotTurn lets strategy act once for the current seat.
func (g *DaketiGame) PlayBotTurn(strategy Strategy) (*ActionResult, error) {
	seat := g.CurrentPlayerIdx
	return g.Apply(seat, strategy.ChooseMove(g, seat))
}
