// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accrual converts elapsed seconds into continuously compounded balances.
//
// Ratios are per-second growth rates with 18 decimals (1e18 = 100% per second).
// All arithmetic is integer fixed point at 36 decimals, rounding down at every step,
// so results are deterministic and never exceed the exact mathematical value.
package accrual

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	// ErrOverflow is returned when an intermediate value no longer fits in 256 bits.
	ErrOverflow = errors.New("accrual: arithmetic overflow")
	// ErrNegative is returned for negative inputs.
	ErrNegative = errors.New("accrual: negative input")
)

var (
	// RatioUnit is the fixed point unit of a ratio.
	RatioUnit = uint256.NewInt(1e18)
	// Precision is the fixed point unit of a growth factor.
	Precision = new(uint256.Int).Mul(RatioUnit, RatioUnit)
)

func toUint256(x *big.Int) (*uint256.Int, error) {
	if x.Sign() < 0 {
		return nil, ErrNegative
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

// growthBase returns 1 + ratio in Precision units.
func growthBase(ratio *uint256.Int) (*uint256.Int, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(ratio, RatioUnit)
	if overflow {
		return nil, ErrOverflow
	}
	base, overflow := scaled.AddOverflow(scaled, Precision)
	if overflow {
		return nil, ErrOverflow
	}
	return base, nil
}

// factor computes (1 + ratio)^t in Precision units by binary exponentiation.
func factor(ratio *uint256.Int, t uint64) (*uint256.Int, error) {
	base, err := growthBase(ratio)
	if err != nil {
		return nil, err
	}

	acc := new(uint256.Int).Set(Precision)
	var overflow bool
	for t > 0 {
		if t&1 == 1 {
			if acc, overflow = acc.MulDivOverflow(acc, base, Precision); overflow {
				return nil, ErrOverflow
			}
		}
		t >>= 1
		if t == 0 {
			break
		}
		if base, overflow = base.MulDivOverflow(base, base, Precision); overflow {
			return nil, ErrOverflow
		}
	}
	return acc, nil
}

// Factor returns (1 + ratio)^t scaled by Precision.
func Factor(ratio *big.Int, t uint64) (*big.Int, error) {
	r, err := toUint256(ratio)
	if err != nil {
		return nil, err
	}
	f, err := factor(r, t)
	if err != nil {
		return nil, err
	}
	return f.ToBig(), nil
}

// Accrue returns principal compounded per second at ratio over elapsed seconds, rounded down.
// Zero elapsed time returns principal unchanged.
func Accrue(principal, ratio *big.Int, elapsed uint64) (*big.Int, error) {
	p, err := toUint256(principal)
	if err != nil {
		return nil, err
	}
	if elapsed == 0 || p.IsZero() {
		return p.ToBig(), nil
	}
	r, err := toUint256(ratio)
	if err != nil {
		return nil, err
	}
	f, err := factor(r, elapsed)
	if err != nil {
		return nil, err
	}
	balance, overflow := new(uint256.Int).MulDivOverflow(p, f, Precision)
	if overflow {
		return nil, ErrOverflow
	}
	return balance.ToBig(), nil
}

// Elapsed returns the seconds of [lastUpdate, now] that fall inside the window [start, end].
func Elapsed(lastUpdate, now, start, end uint64) uint64 {
	from := max(lastUpdate, start)
	to := min(now, end)
	if to <= from {
		return 0
	}
	return to - from
}

// RequiredRewards returns the reserve needed to pay yield on hardCap held for the whole duration.
func RequiredRewards(hardCap, ratio *big.Int, duration uint64) (*big.Int, error) {
	compounded, err := Accrue(hardCap, ratio, duration)
	if err != nil {
		return nil, err
	}
	return compounded.Sub(compounded, hardCap), nil
}
