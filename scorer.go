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
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freightdesk/fuelmatch/model"
)

// Confidence is a fixed constant per rule tier, not computed from
// distance. The values are part of the contract callers and tests rely
// on.
const (
	ConfidenceDateCost          = 0.95
	ConfidenceDateQuantity      = 0.85
	ConfidenceDateSupplierState = 0.60
)

// amountEpsilon and quantityEpsilon bound what still counts as "the
// same" dollar amount or gallon count across the two card networks.
var (
	amountEpsilon   = decimal.NewFromFloat(0.01)
	quantityEpsilon = decimal.NewFromFloat(0.01)
)

// ScoreCandidate applies the heuristic rules in priority order and
// returns the first that holds, or nil when none does. Order is
// significant: a pair satisfying both date_cost and
// date_supplier_state scores as date_cost, never downgraded.
func ScoreCandidate(pair model.CandidatePair, toleranceDays int) *model.ScoredMatch {
	if scored := scoreDateCost(pair); scored != nil {
		return scored
	}
	if scored := scoreDateQuantity(pair); scored != nil {
		return scored
	}
	return scoreDateSupplierState(pair, toleranceDays)
}

// scoreDateCost: same calendar day and the billed amount agrees to the
// cent. The strongest evidence the two records are one purchase.
func scoreDateCost(pair model.CandidatePair) *model.ScoredMatch {
	if !pair.Transaction.Date.Equal(pair.FuelLog.Date) {
		return nil
	}
	if !withinEpsilon(pair.Transaction.Amount, pair.FuelLog.Amount, amountEpsilon) {
		return nil
	}
	return &model.ScoredMatch{
		Pair:       pair,
		MatchType:  model.MatchDateCost,
		Confidence: ConfidenceDateCost,
	}
}

// scoreDateQuantity: same calendar day and gallon counts agree. Covers
// the common case where one side carries fees or a cash-price
// discrepancy but the pumped volume is identical.
func scoreDateQuantity(pair model.CandidatePair) *model.ScoredMatch {
	if !pair.Transaction.Date.Equal(pair.FuelLog.Date) {
		return nil
	}
	if pair.Transaction.Quantity == nil || pair.FuelLog.Quantity == nil {
		return nil
	}
	if !withinEpsilon(*pair.Transaction.Quantity, *pair.FuelLog.Quantity, quantityEpsilon) {
		return nil
	}
	return &model.ScoredMatch{
		Pair:       pair,
		MatchType:  model.MatchDateQuantity,
		Confidence: ConfidenceDateQuantity,
	}
}

// scoreDateSupplierState: dates within tolerance, supplier names agree
// as case-insensitive substrings, and the states match. The weakest
// rule; settlement delay makes exact dates unreliable here.
func scoreDateSupplierState(pair model.CandidatePair, toleranceDays int) *model.ScoredMatch {
	dayDiff := int(pair.Transaction.Date.Sub(pair.FuelLog.Date).Hours() / 24)
	if dayDiff < 0 {
		dayDiff = -dayDiff
	}
	if dayDiff > toleranceDays {
		return nil
	}
	if !supplierNamesMatch(pair.Transaction.SupplierName, pair.FuelLog.SupplierName) {
		return nil
	}
	if !statesMatch(pair.Transaction.SupplierState, pair.FuelLog.SupplierState) {
		return nil
	}
	return &model.ScoredMatch{
		Pair:       pair,
		MatchType:  model.MatchDateSupplierState,
		Confidence: ConfidenceDateSupplierState,
	}
}

// supplierNamesMatch compares normalized supplier names; either side
// containing the other counts, so "Shell #4521" matches "Shell".
func supplierNamesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func statesMatch(a, b string) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b
}

func withinEpsilon(a, b float64, epsilon decimal.Decimal) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThan(epsilon)
}
