/*
Copyright 2024 FreightDesk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fuelmatch

import (
	"sort"

	"github.com/freightdesk/fuelmatch/model"
)

// ResolveAssignments selects a conflict-free one-to-one assignment
// from the scored candidates: sort by confidence descending with a
// deterministic tie-break, then greedily accept any pair whose
// transaction and fuel log are both still unclaimed.
//
// Greedy-by-confidence is a deliberate simplification over optimal
// bipartite matching: confidence comes in three coarse tiers and ties
// inside a tier are rare, so the Hungarian algorithm would buy
// nothing observable at this scale.
func ResolveAssignments(driverID string, scored []model.ScoredMatch) []model.Match {
	ordered := make([]model.ScoredMatch, len(scored))
	copy(ordered, scored)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.Pair.Transaction.Date.Equal(b.Pair.Transaction.Date) {
			return a.Pair.Transaction.Date.Before(b.Pair.Transaction.Date)
		}
		if !a.Pair.FuelLog.Date.Equal(b.Pair.FuelLog.Date) {
			return a.Pair.FuelLog.Date.Before(b.Pair.FuelLog.Date)
		}
		if a.Pair.Transaction.ID != b.Pair.Transaction.ID {
			return a.Pair.Transaction.ID < b.Pair.Transaction.ID
		}
		return a.Pair.FuelLog.ID < b.Pair.FuelLog.ID
	})

	claimedTxns := make(map[string]struct{})
	claimedLogs := make(map[string]struct{})

	matches := make([]model.Match, 0, len(ordered))
	for _, sm := range ordered {
		txnID := sm.Pair.Transaction.ID
		logID := sm.Pair.FuelLog.ID
		if _, taken := claimedTxns[txnID]; taken {
			continue
		}
		if _, taken := claimedLogs[logID]; taken {
			continue
		}
		claimedTxns[txnID] = struct{}{}
		claimedLogs[logID] = struct{}{}

		matches = append(matches, model.Match{
			DriverID:      driverID,
			TransactionID: txnID,
			FuelLogID:     logID,
			MatchType:     sm.MatchType,
			Confidence:    sm.Confidence,
			IsActive:      true,
		})
	}

	return matches
}
