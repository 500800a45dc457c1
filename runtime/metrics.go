// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/thor"
)

var (
	metricOperations  = metrics.LazyLoadCounterVec("runtime_operations_count", []string{"op", "result"})
	metricOpDuration  = metrics.LazyLoadHistogramVec("runtime_operation_duration_ms", []string{"op"}, metrics.BucketExecution)
	metricPoolBalance = metrics.LazyLoadGaugeVec("pool_balance_ether", []string{"kind"})
	metricEventWrites = metrics.LazyLoadCounterVec("runtime_event_writes_count", []string{"result"})
)

// toEther truncates wei to whole ether for gauges.
func toEther(v *big.Int) int64 {
	if v == nil {
		return 0
	}
	return new(big.Int).Quo(v, thor.Ether).Int64()
}
