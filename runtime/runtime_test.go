// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/test/datagen"
	"github.com/vechain/stakepool/thor"
)

const start = 10_000

var (
	owner  = genesis.DevAccount("owner")
	patron = genesis.DevAccount("patron1")
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), thor.Ether)
}

type testRuntime struct {
	*Runtime
	now    atomic.Uint64
	stater *state.Stater
}

func newTestRuntime(t *testing.T) *testRuntime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	stater := state.NewStater(db, 64)
	_, err = genesis.Devnet().Apply(db, stater)
	require.NoError(t, err)

	tr := &testRuntime{stater: stater}
	tr.now.Store(start - 100)
	tr.Runtime = New(stater, edb, Config{Clock: tr.now.Load})
	return tr
}

func params() *pool.Params {
	return &pool.Params{
		Start:             start,
		End:               start + 31_536_000,
		Ratio:             big.NewInt(317097919),
		HardCap:           eth(1_000_000),
		ContributionLimit: eth(10_000),
		AllowedRoles:      []thor.Bytes32{thor.PatronRole},
	}
}

func (tr *testRuntime) initialize(t *testing.T) {
	required, err := tr.RequiredRewards(params())
	require.NoError(t, err)
	require.NoError(t, tr.Initialize(owner, params(), required))
}

func TestDefaults(t *testing.T) {
	tr := newTestRuntime(t)
	assert.Equal(t, thor.PoolContractAddress, tr.PoolAddress())
	assert.Equal(t, uint64(start-100), tr.Now())
	assert.NotNil(t, tr.EventDB())

	rt := New(tr.stater, nil, Config{})
	assert.InDelta(t, time.Now().Unix(), int64(rt.Now()), 5)
	_, err := rt.Events(context.Background(), &eventdb.Filter{})
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	tr := newTestRuntime(t)
	tr.initialize(t)

	info, _, err := tr.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, pool.StatusPending, info.Status)

	tr.now.Store(start)
	require.NoError(t, tr.Stake(patron, eth(100)))

	tr.now.Store(start + 86_400)
	acc, err := tr.Account(patron)
	require.NoError(t, err)
	assert.Equal(t, eth(100), acc.Principal)
	assert.Equal(t, 1, acc.Compounded.Cmp(eth(100)))

	require.NoError(t, tr.Unstake(patron, eth(10)))
	before, err := tr.LedgerBalance(patron)
	require.NoError(t, err)

	amount, err := tr.UnstakeAll(patron)
	require.NoError(t, err)
	assert.Equal(t, 1, amount.Cmp(eth(90)))

	after, err := tr.LedgerBalance(patron)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(before, amount), after)

	info, _, err = tr.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, pool.StatusActive, info.Status)
	assert.Equal(t, 0, info.TotalStaked.Sign())

	events, err := tr.Events(context.Background(), &eventdb.Filter{})
	require.NoError(t, err)
	kinds := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []string{
		string(pool.EventPoolInitialized),
		string(pool.EventStakeAdded),
		string(pool.EventStakeWithdrawn),
		string(pool.EventStakeWithdrawn),
	}, kinds)
}

func TestFailedOperationDiscardsState(t *testing.T) {
	tr := newTestRuntime(t)
	tr.initialize(t)
	tr.now.Store(start)

	stranger := datagen.RandAddress()
	err := tr.Stake(stranger, eth(1))
	assert.True(t, errors.Is(err, pool.ErrUnauthorized))

	// over the contribution limit, nothing is kept
	balance, err := tr.LedgerBalance(patron)
	require.NoError(t, err)
	err = tr.Stake(patron, eth(10_001))
	assert.True(t, errors.Is(err, pool.ErrContributionLimitExceeded))

	after, err := tr.LedgerBalance(patron)
	require.NoError(t, err)
	assert.Equal(t, balance, after)

	acc, err := tr.Account(patron)
	require.NoError(t, err)
	assert.Equal(t, 0, acc.Principal.Sign())

	events, err := tr.Events(context.Background(), &eventdb.Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestTerminate(t *testing.T) {
	tr := newTestRuntime(t)
	tr.initialize(t)

	required, err := tr.RequiredRewards(params())
	require.NoError(t, err)

	_, err = tr.Terminate(patron)
	assert.True(t, errors.Is(err, pool.ErrNotAuthorized))

	refund, err := tr.Terminate(owner)
	require.NoError(t, err)
	assert.Equal(t, required, refund)

	info, _, err := tr.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, pool.StatusTerminated, info.Status)
}

func TestGrantRevoke(t *testing.T) {
	tr := newTestRuntime(t)
	subject := datagen.RandAddress()

	_, err := tr.Grant(patron, subject, thor.PatronRole, 1)
	assert.True(t, errors.Is(err, pool.ErrNotAuthorized))

	_, err = tr.Grant(owner, subject, thor.PatronRole, 0)
	assert.True(t, errors.Is(err, ErrInvalidVersion))

	changed, err := tr.Grant(owner, subject, thor.PatronRole, 2)
	require.NoError(t, err)
	assert.True(t, changed)

	ok, err := tr.HasRole(subject, thor.PatronRole, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := tr.Members(thor.PatronRole)
	require.NoError(t, err)
	assert.Len(t, members, 4)

	changed, err = tr.Revoke(owner, subject, thor.PatronRole)
	require.NoError(t, err)
	assert.True(t, changed)

	ok, err = tr.HasRole(subject, thor.PatronRole, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

type denyAll struct{}

func (denyAll) HasRole(thor.Address, thor.Bytes32, uint64) (bool, error) { return false, nil }

func TestCustomAuthorizer(t *testing.T) {
	tr := newTestRuntime(t)
	rt := New(tr.stater, nil, Config{
		Clock:      tr.now.Load,
		Authorizer: func(*state.State) pool.Authorizer { return denyAll{} },
	})

	required, err := rt.RequiredRewards(params())
	require.NoError(t, err)
	err = rt.Initialize(owner, params(), required)
	assert.True(t, errors.Is(err, pool.ErrNotAuthorized))

	ok, err := rt.HasRole(owner, thor.OwnerRole, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWaiterWokenOnCommit(t *testing.T) {
	tr := newTestRuntime(t)
	w := tr.NewWaiter()
	ch := w.C()

	tr.initialize(t)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestPoolInfoReadsClockOnce(t *testing.T) {
	tr := newTestRuntime(t)
	tr.initialize(t)

	var ticks atomic.Uint64
	ticks.Store(start - 1)
	rt := New(tr.stater, nil, Config{Clock: func() uint64 { return ticks.Add(1) }})

	info, now, err := rt.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, uint64(start), now)
	assert.Equal(t, uint64(start), ticks.Load())
	assert.Equal(t, pool.StatusActive, info.Status)
}
