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
package model

import (
	"encoding/json"
	"sort"
	"time"
)

// MatchType identifies which heuristic rule produced a match.
type MatchType string

const (
	MatchDateCost          MatchType = "date_cost"
	MatchDateQuantity      MatchType = "date_quantity"
	MatchDateSupplierState MatchType = "date_supplier_state"
)

func (m MatchType) Valid() bool {
	switch m {
	case MatchDateCost, MatchDateQuantity, MatchDateSupplierState:
		return true
	}
	return false
}

// Match asserts that one transaction and one fuel log represent the
// same real-world fuel purchase. A transaction and a fuel log each
// participate in at most one active match at any time. Matches are
// recomputed and swapped wholesale, never partially updated.
type Match struct {
	ID            int64     `json:"-"`
	MatchID       string    `json:"match_id"`
	DriverID      string    `json:"driver_id"`
	TransactionID string    `json:"transaction_id"`
	FuelLogID     string    `json:"fuel_log_id"`
	MatchType     MatchType `json:"match_type"`
	Confidence    float64   `json:"confidence"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ComparisonRecord is the canonical shape both transactions and fuel
// logs are reduced to before matching. Date carries day granularity
// only.
type ComparisonRecord struct {
	ID            string
	DriverID      string
	Date          time.Time
	Amount        float64
	Quantity      *float64
	SupplierName  string
	SupplierState string
}

// CandidatePair is a transaction/fuel-log pair worth scoring.
type CandidatePair struct {
	Transaction ComparisonRecord
	FuelLog     ComparisonRecord
}

// ScoredMatch is a candidate pair that satisfied one of the matching
// rules, before conflict resolution.
type ScoredMatch struct {
	Pair       CandidatePair
	MatchType  MatchType
	Confidence float64
}

// MatchStatistics summarizes a driver's active match set. Computed on
// read, never stored.
type MatchStatistics struct {
	DriverID            string            `json:"driver_id"`
	TotalMatches        int               `json:"total_matches"`
	MatchedTransactions int               `json:"matched_transactions"`
	MatchedFuelLogs     int               `json:"matched_fuel_logs"`
	AverageConfidence   float64           `json:"average_confidence"`
	ByType              map[MatchType]int `json:"by_type"`
}

// ActiveMatchSet is the query-facade view of a driver's matches. The
// id sets let report views split matched rows from unmatched without
// walking the match list.
type ActiveMatchSet struct {
	Matches               []*Match            `json:"matches"`
	MatchedTransactionIDs map[string]struct{} `json:"-"`
	MatchedFuelLogIDs     map[string]struct{} `json:"-"`
}

// MarshalJSON renders the id sets as sorted arrays so API consumers
// get them directly instead of re-deriving them from the match list.
func (s *ActiveMatchSet) MarshalJSON() ([]byte, error) {
	matches := s.Matches
	if matches == nil {
		matches = []*Match{}
	}
	return json.Marshal(struct {
		Matches               []*Match `json:"matches"`
		MatchedTransactionIDs []string `json:"matched_transaction_ids"`
		MatchedFuelLogIDs     []string `json:"matched_fuel_log_ids"`
	}{
		Matches:               matches,
		MatchedTransactionIDs: sortedIDs(s.MatchedTransactionIDs),
		MatchedFuelLogIDs:     sortedIDs(s.MatchedFuelLogIDs),
	})
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
