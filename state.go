package fundnav

import (
	"iter"
	"maps"
	"slices"
)

// Holding is a position in a single security.
type Holding struct {
	Ticker  string
	Shares  Quantity
	Average Money // Average is the weighted average purchase price per share.
}

// Cost returns the cost basis of the holding: shares x average price.
func (h Holding) Cost() Money { return h.Average.Mul(h.Shares) }

// State is the portfolio at the end of a calendar day: cash and holdings.
//
// States of a replay never share their holdings, mutating one state never
// alters another day.
type State struct {
	On       Date
	Cash     Money
	holdings map[string]Holding
}

// NewState creates a state on a given day.
func NewState(on Date, cash Money, holdings ...Holding) *State {
	s := &State{On: on, Cash: cash, holdings: make(map[string]Holding, len(holdings))}
	for _, h := range holdings {
		s.put(h)
	}
	return s
}

// clone returns a deep copy of s dated on.
func (s *State) clone(on Date) *State {
	return &State{On: on, Cash: s.Cash, holdings: maps.Clone(s.holdings)}
}

// Holding returns the holding of ticker, if any.
func (s *State) Holding(ticker string) (Holding, bool) {
	h, ok := s.holdings[ticker]
	return h, ok
}

// Shares returns the number of shares held for ticker, zero if it is not held.
func (s *State) Shares(ticker string) Quantity {
	return s.holdings[ticker].Shares
}

// Tickers returns the tickers held, sorted.
func (s *State) Tickers() []string {
	return slices.Sorted(maps.Keys(s.holdings))
}

// Holdings iterates over the holdings in ticker order.
func (s *State) Holdings() iter.Seq[Holding] {
	return func(yield func(Holding) bool) {
		for _, ticker := range s.Tickers() {
			if !yield(s.holdings[ticker]) {
				return
			}
		}
	}
}

// Len returns the number of holdings.
func (s *State) Len() int { return len(s.holdings) }

func (s *State) put(h Holding) { s.holdings[h.Ticker] = h }

// prune drops holdings with no shares left.
func (s *State) prune() {
	maps.DeleteFunc(s.holdings, func(_ string, h Holding) bool { return h.Shares.IsZero() })
}

// Book is the arena of the daily states of a replay, indexed by day offset
// from the first day of the range. States are created in chronological
// order, a state can only look back at days already created.
type Book struct {
	rng    Range
	states []*State
}

func newBook(rng Range, opening *State) *Book {
	b := &Book{rng: rng, states: make([]*State, 0, rng.Len())}
	b.states = append(b.states, opening)
	return b
}

// On returns the state of the given day if it has been created yet.
func (b *Book) On(d Date) (*State, bool) {
	if !b.rng.Contains(d) {
		return nil, false
	}
	i := b.rng.From.DaysUntil(d)
	if i >= len(b.states) {
		return nil, false
	}
	return b.states[i], true
}

// Last returns the most recent state.
func (b *Book) Last() *State { return b.states[len(b.states)-1] }

// advance creates the state of the next day as a copy of the last one.
func (b *Book) advance() *State {
	last := b.Last()
	s := last.clone(last.On.Add(1))
	b.states = append(b.states, s)
	return s
}

// States returns every state of the book in chronological order.
func (b *Book) States() []*State { return b.states }

// Tickers returns every ticker held on at least one day, sorted.
func (b *Book) Tickers() []string {
	seen := make(map[string]struct{})
	for _, s := range b.states {
		for t := range s.holdings {
			seen[t] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
