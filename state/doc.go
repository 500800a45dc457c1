// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the journaled world state built-in contracts run against:
// the funds ledger (per-address balances) and per-contract storage slots.
// Changes are kept in memory with checkpoint/revert support until staged and committed
// to the underlying kv store in one atomic batch.
package state
