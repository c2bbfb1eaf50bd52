package game

import (
	"github.com/jason-s-yu/daketi/internal/models"
)

// StealTarget is the run of cards that would be taken from one opponent's pile,
// listed from the pile top downward.
type StealTarget struct {
	OpponentID int           `json:"opponentId"`
	Cards      []models.Card `json:"cards"`
}

// CaptureAnalysis describes everything a candidate card could capture.
type CaptureAnalysis struct {
	CanCapture   bool          `json:"canCapture"`
	StealTargets []StealTarget `json:"stealTargets"`
	TableMatch   []models.Card `json:"tableMatch"`
	SelfMatch    bool          `json:"selfMatch"`
}

// StolenCount is the total number of cards across all steal targets.
func (a CaptureAnalysis) StolenCount() int {
	n := 0
	for _, t := range a.StealTargets {
		n += len(t.Cards)
	}
	return n
}

// Analyze computes the capture decomposition of card for the acting seat.
// It reads its inputs only and returns freshly allocated slices, so move
// validation, the bot policy and the rigged draw can all call it on live state.
//
// A steal takes the maximal run of equal-rank cards from the top of each
// opponent pile whose top matches. Every equal-rank face-up card matches.
// SelfMatch only flags that the acting seat's own pile top has the same rank;
// it never moves cards out of that pile.
func Analyze(faceUp []models.Card, players []*models.Player, actingID int, card models.Card) CaptureAnalysis {
	res := CaptureAnalysis{
		StealTargets: []StealTarget{},
		TableMatch:   []models.Card{},
	}

	for _, opp := range players {
		if opp.ID == actingID || len(opp.Pile) == 0 {
			continue
		}
		if opp.Pile[len(opp.Pile)-1].Rank != card.Rank {
			continue
		}
		run := []models.Card{}
		for k := len(opp.Pile) - 1; k >= 0; k-- {
			if opp.Pile[k].Rank != card.Rank {
				break
			}
			run = append(run, opp.Pile[k])
		}
		res.StealTargets = append(res.StealTargets, StealTarget{OpponentID: opp.ID, Cards: run})
	}

	for _, c := range faceUp {
		if c.Rank == card.Rank {
			res.TableMatch = append(res.TableMatch, c)
		}
	}

	for _, p := range players {
		if p.ID != actingID {
			continue
		}
		if top, ok := p.PileTop(); ok && top.Rank == card.Rank {
			res.SelfMatch = true
		}
		break
	}

	res.CanCapture = len(res.StealTargets) > 0 || len(res.TableMatch) > 0 || res.SelfMatch
	return res
}
