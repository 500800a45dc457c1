// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/vechain/stakepool/builtin/reverts"
)

var (
	// authorization
	ErrNotAuthorized = reverts.New("NotAuthorized", reverts.KindAuthorization, "caller is not an owner")
	ErrUnauthorized  = reverts.New("Unauthorized", reverts.KindAuthorization, "not a patron")

	// lifecycle
	ErrAlreadyInitialized = reverts.New("AlreadyInitialized", reverts.KindLifecycle, "pool already initialized")
	ErrPoolNotInitialized = reverts.New("PoolNotInitialized", reverts.KindLifecycle, "pool not initialized")
	ErrPoolNotStarted     = reverts.New("PoolNotStarted", reverts.KindLifecycle, "pool not started")
	ErrPoolExpired        = reverts.New("PoolExpired", reverts.KindLifecycle, "pool expired")
	ErrPoolTerminated     = reverts.New("PoolTerminated", reverts.KindLifecycle, "pool terminated")
	ErrPoolStarted        = reverts.New("PoolStarted", reverts.KindLifecycle, "pool already started")

	// capacity
	ErrContributionLimitExceedsHardCap = reverts.New("ContributionLimitExceedsHardCap", reverts.KindCapacity, "contribution limit exceeds hard cap")
	ErrContributionLimitExceeded       = reverts.New("ContributionLimitExceeded", reverts.KindCapacity, "contribution limit exceeded")
	ErrPoolFull                        = reverts.New("PoolFull", reverts.KindCapacity, "pool is full")

	// funding
	ErrInsufficientRewards = reverts.New("InsufficientRewards", reverts.KindFunding, "insufficient rewards reserve")
	ErrInsufficientFunds   = reverts.New("InsufficientFunds", reverts.KindFunding, "insufficient funds")
	ErrRewardsExhausted    = reverts.New("RewardsExhausted", reverts.KindFunding, "rewards reserve exhausted")

	// balance
	ErrNoFundsToUnstake    = reverts.New("NoFundsToUnstake", reverts.KindBalance, "no funds to unstake")
	ErrInsufficientBalance = reverts.New("InsufficientBalance", reverts.KindBalance, "insufficient balance")

	// validation
	ErrInvalidWindow      = reverts.New("InvalidWindow", reverts.KindValidation, "end time must be after start time")
	ErrNoAllowedRoles     = reverts.New("NoAllowedRoles", reverts.KindValidation, "allowed roles must not be empty")
	ErrInvalidAmount      = reverts.New("InvalidAmount", reverts.KindValidation, "amount must be positive")
	ErrInvalidRatio       = reverts.New("InvalidRatio", reverts.KindValidation, "ratio must not be negative")
	ErrArithmeticOverflow = reverts.New("ArithmeticOverflow", reverts.KindValidation, "arithmetic overflow")
)
