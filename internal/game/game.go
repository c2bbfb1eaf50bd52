// internal/game/game.go
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/models"
)

// TurnPhase gates which actions the current seat may take.
type TurnPhase string

const (
	PhaseDraw TurnPhase = "DRAW"
	PhasePlay TurnPhase = "PLAY"
)

var (
	// ErrInvalidAction covers out-of-turn calls, wrong phase, bad hand indexes,
	// captures that match nothing and any action after the game is over.
	ErrInvalidAction = errors.New("invalid action")

	// ErrEmptyDeck is returned by Draw when no card is left; the phase is unchanged.
	ErrEmptyDeck = errors.New("deck is empty")
)

// AnimationDetails tells clients what visually moved during an action.
type AnimationDetails struct {
	Card      models.Card      `json:"card"`
	Analysis  *CaptureAnalysis `json:"analysis,omitempty"`
	ExtraTurn *bool            `json:"extraTurn,omitempty"`
}

// ActionResult is returned by every successful action.
type ActionResult struct {
	Type models.ActionType
	Seat int
	// HandIndex is the played hand position; nil for draws.
	HandIndex *int
	Details   AnimationDetails
}

// DaketiGame holds the entire state for a single game instance in memory.
// It is not safe for concurrent use; the owning room serializes every call.
type DaketiGame struct {
	ID     uuid.UUID
	Config models.GameConfig

	// Deck is drained from the end: the last element is the top card.
	Deck        []models.Card
	FaceUpCards []models.Card
	Players     []*models.Player

	CurrentPlayerIdx int
	TurnPhase        TurnPhase
}

// NewDaketiGame builds a game from cfg with a freshly shuffled deck and deals it.
func NewDaketiGame(cfg models.GameConfig) (*DaketiGame, error) {
	seed := uint64(time.Now().UnixNano())
	return NewSeededDaketiGame(cfg, rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// NewSeededDaketiGame is NewDaketiGame with a caller-supplied shuffle source.
func NewSeededDaketiGame(cfg models.GameConfig, rng *rand.Rand) (*DaketiGame, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	deck := NewDeck()
	ShuffleDeck(deck, rng)
	return newGame(cfg, deck), nil
}

// NewDaketiGameWithDeck deals from the given deck exactly as ordered, without
// shuffling. The last element is dealt first.
func NewDaketiGameWithDeck(cfg models.GameConfig, deck []models.Card) (*DaketiGame, error) {
	if cfg.NumPlayers < models.MinPlayers || cfg.NumPlayers > models.MaxPlayers || cfg.HandSize < 0 || cfg.FaceUpSize < 0 {
		return nil, fmt.Errorf("%w: %+v", models.ErrInvalidConfig, cfg)
	}
	if need := cfg.NumPlayers*cfg.HandSize + cfg.FaceUpSize; need > len(deck) {
		return nil, fmt.Errorf("%w: layout needs %d cards, deck has %d", models.ErrInvalidConfig, need, len(deck))
	}
	return newGame(cfg, cloneCards(deck)), nil
}

func newGame(cfg models.GameConfig, deck []models.Card) *DaketiGame {
	g := &DaketiGame{
		ID:          uuid.New(),
		Config:      cfg,
		Deck:        deck,
		FaceUpCards: []models.Card{},
		Players:     make([]*models.Player, 0, cfg.NumPlayers),
	}
	for i := 0; i < cfg.NumPlayers; i++ {
		g.Players = append(g.Players, models.NewBotPlayer(i, fmt.Sprintf("Bot %d", i)))
	}
	g.deal()
	g.CurrentPlayerIdx = 0
	g.TurnPhase = g.phaseForDeck()
	return g
}

// deal hands out HandSize rounds of one card per seat, then fills the face-up pool.
func (g *DaketiGame) deal() {
	for i := 0; i < g.Config.HandSize; i++ {
		for _, p := range g.Players {
			if c, ok := g.popTop(); ok {
				p.Hand = append(p.Hand, c)
			}
		}
	}
	for i := 0; i < g.Config.FaceUpSize; i++ {
		if c, ok := g.popTop(); ok {
			g.FaceUpCards = append(g.FaceUpCards, c)
		}
	}
}

func (g *DaketiGame) popTop() (models.Card, bool) {
	if len(g.Deck) == 0 {
		return models.Card{}, false
	}
	top := len(g.Deck) - 1
	c := g.Deck[top]
	g.Deck = g.Deck[:top]
	return c, true
}

func (g *DaketiGame) phaseForDeck() TurnPhase {
	if len(g.Deck) > 0 {
		return PhaseDraw
	}
	return PhasePlay
}

// Player returns the seat, or nil if seat is out of range.
func (g *DaketiGame) Player(seat int) *models.Player {
	if seat < 0 || seat >= len(g.Players) {
		return nil
	}
	return g.Players[seat]
}

// CurrentPlayer returns the seat whose turn it is.
func (g *DaketiGame) CurrentPlayer() *models.Player {
	return g.Players[g.CurrentPlayerIdx]
}

// checkTurn rejects calls from anyone but the current seat, in any phase but want.
func (g *DaketiGame) checkTurn(seat int, want TurnPhase) error {
	if g.IsGameOver() {
		return fmt.Errorf("%w: game is over", ErrInvalidAction)
	}
	if g.Player(seat) == nil {
		return fmt.Errorf("%w: no seat %d", ErrInvalidAction, seat)
	}
	if seat != g.CurrentPlayerIdx {
		return fmt.Errorf("%w: seat %d acted out of turn (current %d)", ErrInvalidAction, seat, g.CurrentPlayerIdx)
	}
	if g.TurnPhase != want {
		return fmt.Errorf("%w: seat %d needs phase %s, game is in %s", ErrInvalidAction, seat, want, g.TurnPhase)
	}
	return nil
}

// Apply routes a requested action to the matching operation.
func (g *DaketiGame) Apply(seat int, action models.GameAction) (*ActionResult, error) {
	switch action.ActionType {
	case models.ActionDraw:
		return g.Draw(seat)
	case models.ActionDiscard, models.ActionCapture:
		if action.HandIndex == nil {
			return nil, fmt.Errorf("%w: %s without handIndex", ErrInvalidAction, action.ActionType)
		}
		if action.ActionType == models.ActionDiscard {
			return g.Discard(seat, *action.HandIndex)
		}
		return g.Capture(seat, *action.HandIndex)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, action.ActionType)
	}
}

// Draw moves one card from the deck into the seat's hand and opens the PLAY phase.
// Which card is drawn depends on the seats' cheat flags (see drawIndex).
func (g *DaketiGame) Draw(seat int) (*ActionResult, error) {
	if err := g.checkTurn(seat, PhaseDraw); err != nil {
		return nil, err
	}
	if len(g.Deck) == 0 {
		return nil, ErrEmptyDeck
	}
	idx := g.drawIndex(seat)
	card := g.Deck[idx]
	g.Deck = removeAt(g.Deck, idx)

	p := g.Players[seat]
	p.Hand = append(p.Hand, card)
	g.TurnPhase = PhasePlay

	return &ActionResult{
		Type:    models.ActionDraw,
		Seat:    seat,
		Details: AnimationDetails{Card: card},
	}, nil
}

// Discard moves a hand card onto the face-up pool and ends the turn.
func (g *DaketiGame) Discard(seat, handIndex int) (*ActionResult, error) {
	if err := g.checkTurn(seat, PhasePlay); err != nil {
		return nil, err
	}
	p := g.Players[seat]
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return nil, fmt.Errorf("%w: hand index %d out of range for seat %d", ErrInvalidAction, handIndex, seat)
	}
	card := p.Hand[handIndex]
	p.Hand = removeAt(p.Hand, handIndex)
	g.FaceUpCards = append(g.FaceUpCards, card)
	g.EndTurn()

	return &ActionResult{
		Type:      models.ActionDiscard,
		Seat:      seat,
		HandIndex: &handIndex,
		Details:   AnimationDetails{Card: card},
	}, nil
}

// Capture plays a hand card that matches something. Cards land on the seat's
// pile in a fixed order: stolen runs (seat order), table matches, the played card.
// With cards left in the deck the seat draws again; otherwise the turn passes.
func (g *DaketiGame) Capture(seat, handIndex int) (*ActionResult, error) {
	if err := g.checkTurn(seat, PhasePlay); err != nil {
		return nil, err
	}
	p := g.Players[seat]
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return nil, fmt.Errorf("%w: hand index %d out of range for seat %d", ErrInvalidAction, handIndex, seat)
	}
	card := p.Hand[handIndex]
	analysis := Analyze(g.FaceUpCards, g.Players, seat, card)
	if !analysis.CanCapture {
		return nil, fmt.Errorf("%w: %s%s captures nothing", ErrInvalidAction, card.Rank, card.Suit)
	}

	p.Hand = removeAt(p.Hand, handIndex)
	for _, t := range analysis.StealTargets {
		opp := g.Players[t.OpponentID]
		cut := len(opp.Pile) - len(t.Cards)
		p.Pile = append(p.Pile, opp.Pile[cut:]...)
		opp.Pile = cloneCards(opp.Pile[:cut])
	}
	if len(analysis.TableMatch) > 0 {
		g.FaceUpCards = removeCards(g.FaceUpCards, analysis.TableMatch)
		p.Pile = append(p.Pile, analysis.TableMatch...)
	}
	p.Pile = append(p.Pile, card)

	extraTurn := len(g.Deck) > 0
	if extraTurn {
		g.TurnPhase = PhaseDraw
	} else {
		g.EndTurn()
	}

	return &ActionResult{
		Type:      models.ActionCapture,
		Seat:      seat,
		HandIndex: &handIndex,
		Details: AnimationDetails{
			Card:      card,
			Analysis:  &analysis,
			ExtraTurn: &extraTurn,
		},
	}, nil
}

// EndTurn passes the turn to the next seat. Once the deck is empty there is no
// draw phase, and seats with an empty hand are skipped since they cannot act.
func (g *DaketiGame) EndTurn() {
	n := len(g.Players)
	next := (g.CurrentPlayerIdx + 1) % n
	if len(g.Deck) == 0 {
		for i := 0; i < n; i++ {
			cand := (g.CurrentPlayerIdx + 1 + i) % n
			if len(g.Players[cand].Hand) > 0 {
				next = cand
				break
			}
		}
	}
	g.CurrentPlayerIdx = next
	g.TurnPhase = g.phaseForDeck()
}

// IsGameOver is true once the deck and every hand are empty.
func (g *DaketiGame) IsGameOver() bool {
	if len(g.Deck) > 0 {
		return false
	}
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// Scores returns each seat's pile total, indexed by seat.
func (g *DaketiGame) Scores() []int {
	scores := make([]int, len(g.Players))
	for i, p := range g.Players {
		scores[i] = p.Score()
	}
	return scores
}

// SeatBySession finds the seat bound to a live session.
func (g *DaketiGame) SeatBySession(sessionID uuid.UUID) *models.Player {
	if sessionID == uuid.Nil {
		return nil
	}
	for _, p := range g.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

// SeatByPersistentID finds the seat a returning human previously held.
func (g *DaketiGame) SeatByPersistentID(persistentID string) *models.Player {
	if persistentID == "" {
		return nil
	}
	for _, p := range g.Players {
		if p.PersistentID == persistentID {
			return p
		}
	}
	return nil
}

// FirstVacantSeat returns the lowest seat never claimed by a human.
func (g *DaketiGame) FirstVacantSeat() *models.Player {
	for _, p := range g.Players {
		if p.IsVacant() {
			return p
		}
	}
	return nil
}
