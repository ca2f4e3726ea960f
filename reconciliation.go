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
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	redlock "github.com/freightdesk/fuelmatch/internal/lock"
	"github.com/freightdesk/fuelmatch/model"
)

const lockTTL = 2 * time.Minute

// FindMatchesForDriver runs the full matching pipeline over all of a
// driver's records: load, normalize, generate candidates, score,
// resolve, persist. It is the entry point uploads and admin actions
// call after new data lands.
func (s *Fuelmatch) FindMatchesForDriver(ctx context.Context, driverID string) ([]model.Match, error) {
	return s.FindMatchesForDriverInWindow(ctx, driverID, model.Window{})
}

// FindMatchesForDriverInWindow scopes the run to a date window,
// typically a fiscal quarter. Re-running on unchanged data produces
// the same active-match set.
//
// Concurrent runs for the same driver are serialized through a
// per-driver lock; a contending run retries the whole
// compute-then-save cycle so it never persists stale results.
func (s *Fuelmatch) FindMatchesForDriverInWindow(ctx context.Context, driverID string, window model.Window) ([]model.Match, error) {
	ctx, span := otel.Tracer("fuelmatch.matching").Start(ctx, "MatchDriver")
	defer span.End()

	if !window.IsZero() {
		if err := window.Validate(); err != nil {
			return nil, &CandidateGenerationError{Err: err}
		}
	}

	if _, err := s.datasource.GetDriverByID(ctx, driverID); err != nil {
		return nil, err
	}

	var matches []model.Match
	operation := func() error {
		locker := redlock.ForDriver(s.redis, driverID, model.GenerateUUIDWithSuffix("run"))
		if err := locker.Lock(ctx, lockTTL); err != nil {
			// Lock contention retries; everything inside the lock is
			// recomputed from scratch on the next attempt.
			return err
		}
		defer func() {
			if err := locker.Unlock(ctx); err != nil {
				logrus.Warnf("failed to release match lock for driver %s: %v", driverID, err)
			}
		}()

		computed, err := s.computeAndSaveMatches(ctx, driverID, window)
		if err != nil {
			return backoff.Permanent(err)
		}
		matches = computed
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Duration(s.lockWaitSeconds) * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	return matches, nil
}

// computeAndSaveMatches is the pipeline body. It must only run while
// holding the driver's lock.
func (s *Fuelmatch) computeAndSaveMatches(ctx context.Context, driverID string, window model.Window) ([]model.Match, error) {
	txns, err := s.datasource.GetTransactionsForDriver(ctx, driverID, window)
	if err != nil {
		return nil, err
	}
	fuelLogs, err := s.datasource.GetFuelLogsForDriver(ctx, driverID, window)
	if err != nil {
		return nil, err
	}

	txnRecords := make([]model.ComparisonRecord, 0, len(txns))
	for _, txn := range txns {
		record, err := NormalizeTransaction(txn)
		if err != nil {
			logrus.Warnf("skipping transaction during matching: %v", err)
			continue
		}
		txnRecords = append(txnRecords, record)
	}

	logRecords := make([]model.ComparisonRecord, 0, len(fuelLogs))
	for _, fl := range fuelLogs {
		record, err := NormalizeFuelLog(fl)
		if err != nil {
			logrus.Warnf("skipping fuel log during matching: %v", err)
			continue
		}
		logRecords = append(logRecords, record)
	}

	candidates, err := GenerateCandidates(txnRecords, logRecords, window, s.dateToleranceDays)
	if err != nil {
		return nil, err
	}

	var scored []model.ScoredMatch
	for _, pair := range candidates {
		if sm := ScoreCandidate(pair, s.dateToleranceDays); sm != nil {
			scored = append(scored, *sm)
		}
	}

	matches := ResolveAssignments(driverID, scored)

	if err := s.datasource.SaveMatches(ctx, driverID, matches); err != nil {
		return nil, err
	}

	logrus.Infof("matching run for driver %s: %d transactions, %d fuel logs, %d matches", driverID, len(txnRecords), len(logRecords), len(matches))
	return matches, nil
}

// GetActiveMatchesForDriver returns the driver's current active match
// set, including the matched id sets report views use.
func (s *Fuelmatch) GetActiveMatchesForDriver(ctx context.Context, driverID string) (*model.ActiveMatchSet, error) {
	return s.datasource.GetActiveMatchesForDriver(ctx, driverID)
}

// MatchStatistics summarizes the driver's active matches. Statistics
// are always derived from the active set, never stored.
func (s *Fuelmatch) MatchStatistics(ctx context.Context, driverID string) (*model.MatchStatistics, error) {
	set, err := s.datasource.GetActiveMatchesForDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	stats := &model.MatchStatistics{
		DriverID:            driverID,
		TotalMatches:        len(set.Matches),
		MatchedTransactions: len(set.MatchedTransactionIDs),
		MatchedFuelLogs:     len(set.MatchedFuelLogIDs),
		ByType:              make(map[model.MatchType]int),
	}

	var confidenceSum float64
	for _, m := range set.Matches {
		confidenceSum += m.Confidence
		stats.ByType[m.MatchType]++
	}
	if stats.TotalMatches > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.TotalMatches)
	}

	return stats, nil
}
