// Package ledger holds the derived view of the transaction collection and
// the lifecycle rules for creating and deleting entries.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cauiki/casa-ink-financeiro/internal/model"
)

// Subscriber is the slice of the store the projection needs.
type Subscriber interface {
	SubscribeOrdered(onChange func([]model.Transaction), onErr func(error)) (cancel func())
}

// State is the materialized view for one viewer: the ordered record list, a
// loading flag that is true only until the first snapshot (or subscription
// error) arrives, and the day total for the viewer's current calendar day.
// The three fields always change together.
type State struct {
	Transactions []model.Transaction
	Loading      bool
	DayTotal     decimal.Decimal
}

// Reduce folds an incoming snapshot into a new state. The snapshot replaces
// the list wholesale; the day total is recomputed from scratch so it cannot
// drift, and the sum is order-independent. now and loc define what "today"
// means for this viewer.
func Reduce(prev State, snap []model.Transaction, now time.Time, loc *time.Location) State {
	total := decimal.Zero
	y, m, d := now.In(loc).Date()
	for _, t := range snap {
		ty, tm, td := t.CreatedAt.In(loc).Date()
		if ty == y && tm == m && td == d {
			total = total.Add(t.Value)
		}
	}
	return State{Transactions: snap, Loading: false, DayTotal: total}
}

// Projection subscribes to the store and keeps a State current. Snapshots
// are applied in delivery order; each application is atomic under the mutex.
type Projection struct {
	loc *time.Location
	now func() time.Time

	mu     sync.RWMutex
	state  State
	cancel func()
}

// NewProjection builds an idle projection evaluating "today" in loc.
func NewProjection(loc *time.Location) *Projection {
	return &Projection{
		loc:   loc,
		now:   time.Now,
		state: State{Loading: true, DayTotal: decimal.Zero},
	}
}

// Start opens the subscription. onUpdate, if non-nil, is called after every
// state change with the new state. A read failure ends the loading phase but
// keeps the last known list visible.
func (p *Projection) Start(src Subscriber, onUpdate func(State)) {
	p.cancel = src.SubscribeOrdered(
		func(snap []model.Transaction) {
			p.mu.Lock()
			p.state = Reduce(p.state, snap, p.now(), p.loc)
			st := p.state
			p.mu.Unlock()
			if onUpdate != nil {
				onUpdate(st)
			}
		},
		func(error) {
			p.mu.Lock()
			p.state.Loading = false
			st := p.state
			p.mu.Unlock()
			if onUpdate != nil {
				onUpdate(st)
			}
		},
	)
}

// Stop tears the subscription down. Safe to call more than once; no state
// change is applied after it returns.
func (p *Projection) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

// Current returns a copy of the state.
func (p *Projection) Current() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
