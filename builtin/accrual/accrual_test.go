// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/test/datagen"
)

var ether = big.NewInt(1e18)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), ether)
}

func TestAccrueZeroElapsed(t *testing.T) {
	for _, p := range []*big.Int{big.NewInt(0), big.NewInt(1), eth(3), new(big.Int).Lsh(big.NewInt(1), 200)} {
		got, err := Accrue(p, big.NewInt(1e15), 0)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(p))
	}
}

func TestAccrueKnownValues(t *testing.T) {
	tests := []struct {
		name      string
		principal *big.Int
		ratio     *big.Int
		elapsed   uint64
		want      *big.Int
	}{
		{"zero ratio", eth(5), big.NewInt(0), 1_000_000, eth(5)},
		{"doubling per second", eth(1), ether, 10, eth(1024)},
		{"half per second", eth(4), big.NewInt(5e17), 2, eth(9)},
		{"one second", eth(1), big.NewInt(1e9), 1, new(big.Int).Add(ether, big.NewInt(1e9))},
		{"zero principal", big.NewInt(0), ether, 100, big.NewInt(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accrue(tt.principal, tt.ratio, tt.elapsed)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestAccrueMonotonicInTime(t *testing.T) {
	principal := eth(1)
	for _, ratio := range []*big.Int{big.NewInt(1), big.NewInt(317097919), big.NewInt(1e12)} {
		prev := new(big.Int).Set(principal)
		for elapsed := uint64(0); elapsed <= 2048; elapsed++ {
			got, err := Accrue(principal, ratio, elapsed)
			require.NoError(t, err)
			assert.True(t, got.Cmp(prev) >= 0, "ratio %v elapsed %d", ratio, elapsed)
			assert.True(t, got.Cmp(principal) >= 0)
			prev = got
		}
	}
}

func TestAccrueMonotonicInPrincipal(t *testing.T) {
	ratio := big.NewInt(317097919)
	prev := big.NewInt(0)
	for i := 0; i < 200; i++ {
		p := new(big.Int).Add(prev, datagen.RandBigIntN(1e18))
		lo, err := Accrue(prev, ratio, 31_536_000)
		require.NoError(t, err)
		hi, err := Accrue(p, ratio, 31_536_000)
		require.NoError(t, err)
		assert.True(t, hi.Cmp(lo) >= 0)
		prev = p
	}
}

func TestAccrueNeverExceedsExact(t *testing.T) {
	// (1 + 1e-9)^t computed exactly with rationals
	ratio := big.NewInt(1e9)
	for _, elapsed := range []uint64{1, 2, 3, 7, 64, 100} {
		got, err := Accrue(ether, ratio, elapsed)
		require.NoError(t, err)

		base := new(big.Rat).SetFrac(new(big.Int).Add(ether, ratio), ether)
		exact := new(big.Rat).SetInt64(1)
		for i := uint64(0); i < elapsed; i++ {
			exact.Mul(exact, base)
		}
		exact.Mul(exact, new(big.Rat).SetInt(ether))
		floor := new(big.Int).Quo(exact.Num(), exact.Denom())

		assert.True(t, got.Cmp(floor) <= 0, "elapsed %d", elapsed)
		assert.True(t, new(big.Int).Sub(floor, got).Cmp(big.NewInt(2)) <= 0, "elapsed %d", elapsed)
	}
}

func TestAccrueIdempotent(t *testing.T) {
	a, err := Accrue(eth(7), big.NewInt(123456789), 86400)
	require.NoError(t, err)
	b, err := Accrue(eth(7), big.NewInt(123456789), 86400)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAccrueOverflow(t *testing.T) {
	_, err := Accrue(eth(1), ether, 1000)
	assert.ErrorIs(t, err, ErrOverflow)

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = Accrue(huge, big.NewInt(1), 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Accrue(eth(1), huge, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Accrue(big.NewInt(-1), big.NewInt(1), 1)
	assert.ErrorIs(t, err, ErrNegative)
}

func TestFactor(t *testing.T) {
	f, err := Factor(big.NewInt(0), 100)
	require.NoError(t, err)
	assert.Equal(t, Precision.ToBig(), f)

	f, err = Factor(ether, 3)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(Precision.ToBig(), big.NewInt(8)), f)
}

func TestElapsed(t *testing.T) {
	const start, end = 1000, 2000
	tests := []struct {
		lastUpdate, now uint64
		want            uint64
	}{
		{0, 500, 0},       // before window
		{0, 1500, 500},    // clamps lastUpdate to start
		{1200, 1500, 300}, // inside window
		{1200, 2500, 800}, // clamps now to end
		{2100, 2500, 0},   // after window
		{1500, 1500, 0},   // no time passed
		{1600, 1500, 0},   // clock behind checkpoint
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Elapsed(tt.lastUpdate, tt.now, start, end), "lastUpdate %d now %d", tt.lastUpdate, tt.now)
	}
}

func TestRequiredRewards(t *testing.T) {
	got, err := RequiredRewards(eth(4), big.NewInt(5e17), 2)
	require.NoError(t, err)
	assert.Equal(t, eth(5), got)

	got, err = RequiredRewards(eth(4), big.NewInt(0), 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sign())
}
