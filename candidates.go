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
	"fmt"
	"time"

	"github.com/freightdesk/fuelmatch/model"
)

// CandidateGenerationError fails the whole matching run for a driver;
// a meaningless window must not produce a meaningless match set.
type CandidateGenerationError struct {
	Err error
}

func (e *CandidateGenerationError) Error() string {
	return fmt.Sprintf("candidate generation failed: %v", e.Err)
}

func (e *CandidateGenerationError) Unwrap() error {
	return e.Err
}

// GenerateCandidates pairs the transactions and fuel logs worth
// scoring. Records are bucketed by calendar day and only buckets
// within toleranceDays of each other are paired, which keeps the
// output near O(T+F) instead of the full cross product.
func GenerateCandidates(transactions, fuelLogs []model.ComparisonRecord, window model.Window, toleranceDays int) ([]model.CandidatePair, error) {
	if !window.IsZero() {
		if err := window.Validate(); err != nil {
			return nil, &CandidateGenerationError{Err: err}
		}
	}
	if toleranceDays < 0 {
		return nil, &CandidateGenerationError{Err: fmt.Errorf("negative date tolerance: %d", toleranceDays)}
	}

	if len(transactions) == 0 || len(fuelLogs) == 0 {
		return []model.CandidatePair{}, nil
	}

	// Bucket fuel logs by day. Window filtering happens here so a
	// record dated outside the window can never surface as a candidate.
	logsByDay := make(map[time.Time][]model.ComparisonRecord)
	for _, fl := range fuelLogs {
		if !window.Contains(fl.Date) {
			continue
		}
		day := model.DayOf(fl.Date)
		logsByDay[day] = append(logsByDay[day], fl)
	}

	var pairs []model.CandidatePair
	for _, txn := range transactions {
		if !window.Contains(txn.Date) {
			continue
		}
		day := model.DayOf(txn.Date)
		for offset := -toleranceDays; offset <= toleranceDays; offset++ {
			bucket := logsByDay[day.AddDate(0, 0, offset)]
			for _, fl := range bucket {
				pairs = append(pairs, model.CandidatePair{Transaction: txn, FuelLog: fl})
			}
		}
	}

	if pairs == nil {
		pairs = []model.CandidatePair{}
	}
	return pairs, nil
}
