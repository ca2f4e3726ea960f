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

package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/freightdesk/fuelmatch/internal/apierror"
	"github.com/freightdesk/fuelmatch/model"
)

// SaveMatches replaces the driver's active match set atomically: lock
// the driver row, deactivate every active match, insert the new set,
// commit. A failure at any point rolls the whole thing back and leaves
// the prior active set untouched. Matches transition active ->
// superseded here and never back.
func (d Datasource) SaveMatches(ctx context.Context, driverID string, matches []model.Match) error {
	ctx, span := otel.Tracer("Match").Start(ctx, "Replacing active matches for driver")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin match transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Row-level lock serializes concurrent saves for the same driver;
	// runs for different drivers proceed in parallel.
	var lockedID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM fuelmatch.drivers WHERE driver_id = $1 FOR UPDATE
	`, driverID).Scan(&lockedID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to lock driver for match save", errors.Wrap(err, driverID))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE fuelmatch.matches SET is_active = FALSE
		WHERE driver_id = $1 AND is_active = TRUE
	`, driverID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to supersede prior matches", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fuelmatch.matches (match_id, driver_id, transaction_id, fuel_log_id, match_type, confidence, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
	`)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to prepare match insert", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range matches {
		matchID := m.MatchID
		if matchID == "" {
			matchID = model.GenerateUUIDWithSuffix("match")
		}
		_, err = stmt.ExecContext(ctx, matchID, driverID, m.TransactionID, m.FuelLogID, m.MatchType, m.Confidence, now)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to insert match", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit match save", err)
	}

	return nil
}

// GetActiveMatchesForDriver returns the driver's active matches plus
// the matched transaction and fuel-log id sets the report views use to
// split matched from unmatched rows.
func (d Datasource) GetActiveMatchesForDriver(ctx context.Context, driverID string) (*model.ActiveMatchSet, error) {
	ctx, span := otel.Tracer("Match").Start(ctx, "Fetching active matches for driver")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, match_id, driver_id, transaction_id, fuel_log_id, match_type, confidence, is_active, created_at
		FROM fuelmatch.matches
		WHERE driver_id = $1 AND is_active = TRUE
		ORDER BY created_at, match_id
	`, driverID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve matches", err)
	}
	defer rows.Close()

	set := &model.ActiveMatchSet{
		MatchedTransactionIDs: make(map[string]struct{}),
		MatchedFuelLogIDs:     make(map[string]struct{}),
	}

	for rows.Next() {
		m := &model.Match{}
		err = rows.Scan(&m.ID, &m.MatchID, &m.DriverID, &m.TransactionID, &m.FuelLogID, &m.MatchType, &m.Confidence, &m.IsActive, &m.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan match", err)
		}
		set.Matches = append(set.Matches, m)
		set.MatchedTransactionIDs[m.TransactionID] = struct{}{}
		set.MatchedFuelLogIDs[m.FuelLogID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating matches", err)
	}

	return set, nil
}
