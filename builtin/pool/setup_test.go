// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/test/datagen"
	"github.com/vechain/stakepool/thor"
)

const (
	yearSeconds = 31_536_000
	testStart   = 1_000
	testEnd     = testStart + yearSeconds
)

var (
	// about 1% a year, compounded every second
	testRatio  = big.NewInt(317097919)
	memberRole = thor.RoleID("member")
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), thor.Ether)
}

type roleTable map[thor.Address]map[thor.Bytes32]bool

func (r roleTable) grant(subject thor.Address, role thor.Bytes32) {
	if r[subject] == nil {
		r[subject] = make(map[thor.Bytes32]bool)
	}
	r[subject][role] = true
}

func (r roleTable) HasRole(subject thor.Address, role thor.Bytes32, _ uint64) (bool, error) {
	return r[subject][role], nil
}

type failingAuthorizer struct{}

func (failingAuthorizer) HasRole(thor.Address, thor.Bytes32, uint64) (bool, error) {
	return false, errors.New("backend unavailable")
}

type testPool struct {
	*Pool
	state   *state.State
	roles   roleTable
	events  []*Event
	owner   thor.Address
	patrons []thor.Address
}

func newTestPool(t *testing.T) *testPool {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 64).NewState()
	tp := &testPool{
		state:   st,
		roles:   make(roleTable),
		owner:   datagen.RandAddress(),
		patrons: datagen.RandAddresses(3),
	}
	tp.Pool = New(thor.PoolContractAddress, st, tp.roles, func(ev *Event) {
		tp.events = append(tp.events, ev)
	})

	tp.roles.grant(tp.owner, thor.OwnerRole)
	require.NoError(t, st.SetBalance(tp.owner, eth(10_000_000)))
	for _, p := range tp.patrons {
		tp.roles.grant(p, thor.PatronRole)
		require.NoError(t, st.SetBalance(p, eth(1_000_000)))
	}
	return tp
}

func defaultParams() *Params {
	return &Params{
		Start:             testStart,
		End:               testEnd,
		Ratio:             new(big.Int).Set(testRatio),
		HardCap:           eth(5_000_000),
		ContributionLimit: eth(50_000),
		AllowedRoles:      []thor.Bytes32{thor.PatronRole, memberRole},
	}
}

// initialized returns a pool initialized with defaultParams and the exact required reserve.
func initialized(t *testing.T) (*testPool, *big.Int) {
	tp := newTestPool(t)
	params := defaultParams()
	required, err := RequiredRewards(params)
	require.NoError(t, err)
	require.NoError(t, tp.Initialize(tp.owner, params, required, 0))
	tp.events = nil
	return tp, required
}

func (tp *testPool) balanceOf(t *testing.T, addr thor.Address) *big.Int {
	bal, err := tp.state.GetBalance(addr)
	require.NoError(t, err)
	return bal
}
