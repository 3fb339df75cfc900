package dashboard

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/pkg/enums"
)

type card struct {
	state enums.CardState
	token uint64
}

// State is the dashboard's application state: focus, card display states,
// the refresh token and the alert keys of the last sync. It is owned by the
// Service and only changed through it.
type State struct {
	token atomic.Uint64

	mu        sync.RWMutex
	focus     int
	hasFocus  bool
	cards     map[int]card
	lastKeys  map[string]struct{}
	hasSynced bool
	syncedAt  time.Time
}

func newState() *State {
	return &State{cards: map[int]card{}, lastKeys: map[string]struct{}{}}
}

func (st *State) Focus() (int, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.focus, st.hasFocus
}

func (st *State) setFocus(eventID int) {
	st.mu.Lock()
	st.focus, st.hasFocus = eventID, true
	st.mu.Unlock()
}

// RefreshToken is the last token handed out; it only grows.
func (st *State) RefreshToken() uint64 {
	return st.token.Load()
}

// CardState defaults to collapsed for cards never toggled.
func (st *State) CardState(eventID int) enums.CardState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if c, ok := st.cards[eventID]; ok {
		return c.state
	}
	return enums.CardCollapsed
}

// Cards returns a copy of every toggled card state.
func (st *State) Cards() map[int]enums.CardState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make(map[int]enums.CardState, len(st.cards))
	for id, c := range st.cards {
		out[id] = c.state
	}
	return out
}

// Expanded lists the ids of expanded cards in ascending order.
func (st *State) Expanded() []int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var ids []int
	for id, c := range st.cards {
		if c.state == enums.CardExpanded {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// beginExpand moves a card to Expanding and returns the token its work must
// still hold when it finishes.
func (st *State) beginExpand(eventID int) uint64 {
	token := st.token.Add(1)
	st.mu.Lock()
	st.cards[eventID] = card{state: enums.CardExpanding, token: token}
	st.mu.Unlock()
	return token
}

// finishExpand commits the expansion unless the card was toggled since.
func (st *State) finishExpand(eventID int, token uint64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	c, ok := st.cards[eventID]
	if !ok || c.token != token || c.state != enums.CardExpanding {
		return false
	}
	st.cards[eventID] = card{state: enums.CardExpanded, token: token}
	return true
}

// abortExpand returns a failed expansion to Collapsed if nothing else
// touched the card meanwhile.
func (st *State) abortExpand(eventID int, token uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if c, ok := st.cards[eventID]; ok && c.token == token {
		st.cards[eventID] = card{state: enums.CardCollapsed, token: token}
	}
}

func (st *State) collapse(eventID int) {
	token := st.token.Add(1)
	st.mu.Lock()
	st.cards[eventID] = card{state: enums.CardCollapsed, token: token}
	st.mu.Unlock()
}

// swapAlertKeys stores the keys of this sync and returns the previous set.
func (st *State) swapAlertKeys(keys map[string]struct{}, at time.Time) (map[string]struct{}, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	prev, had := st.lastKeys, st.hasSynced
	st.lastKeys, st.hasSynced, st.syncedAt = keys, true, at
	return prev, had
}

func (st *State) LastSync() (time.Time, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.syncedAt, st.hasSynced
}
