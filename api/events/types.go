// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	stdmath "math"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/thor"
)

type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter selects pool notifications.
type EventFilter struct {
	Kinds       []string      `json:"kinds"`
	Participant *thor.Address `json:"participant"`
	Range       *Range        `json:"range"`
	Options     *Options      `json:"options"`
	Order       eventdb.Order `json:"order"`
}

// Event for marshal a pool notification.
type Event struct {
	Seq         uint64                `json:"seq"`
	Kind        string                `json:"kind"`
	Participant thor.Address          `json:"participant"`
	Amount      *math.HexOrDecimal256 `json:"amount"`
	Timestamp   uint64                `json:"timestamp"`
}

func ConvertEvent(ev *eventdb.Event) *Event {
	amount := math.HexOrDecimal256{}
	if ev.Amount != nil {
		amount = math.HexOrDecimal256(*ev.Amount)
	}
	return &Event{
		Seq:         ev.Seq,
		Kind:        ev.Kind,
		Participant: ev.Participant,
		Amount:      &amount,
		Timestamp:   ev.Timestamp,
	}
}

// ValidKind reports whether kind names a pool notification.
func ValidKind(kind string) bool {
	switch kind {
	case string(pool.EventPoolInitialized),
		string(pool.EventStakeAdded),
		string(pool.EventStakeWithdrawn),
		string(pool.EventPoolTerminated):
		return true
	}
	return false
}

func convertFilter(ef *EventFilter) *eventdb.Filter {
	f := &eventdb.Filter{
		Kinds:       ef.Kinds,
		Participant: ef.Participant,
		Order:       ef.Order,
	}
	if ef.Range != nil {
		r := &eventdb.Range{From: 0, To: stdmath.MaxInt64}
		if ef.Range.From != nil {
			r.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			r.To = *ef.Range.To
		}
		f.Range = r
	}
	if ef.Options != nil {
		f.Options = &eventdb.Options{Offset: ef.Options.Offset, Limit: ef.Options.Limit}
	}
	return f
}
