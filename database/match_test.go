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
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/freightdesk/fuelmatch/internal/apierror"
	"github.com/freightdesk/fuelmatch/model"
)

func TestSaveMatches_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	matches := []model.Match{
		{TransactionID: "txn_1", FuelLogID: "flog_1", MatchType: model.MatchDateCost, Confidence: 0.95},
		{TransactionID: "txn_2", FuelLogID: "flog_2", MatchType: model.MatchDateQuantity, Confidence: 0.85},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM fuelmatch.drivers WHERE driver_id = \\$1 FOR UPDATE").
		WithArgs("drv_1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("UPDATE fuelmatch.matches SET is_active = FALSE").
		WithArgs("drv_1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO fuelmatch.matches")
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "drv_1", "txn_1", "flog_1", model.MatchDateCost, 0.95, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "drv_1", "txn_2", "flog_2", model.MatchDateQuantity, 0.85, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = ds.SaveMatches(context.Background(), "drv_1", matches)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An empty set still runs the deactivate step; re-running matching on
// a driver with no candidates clears their stale matches.
func TestSaveMatches_EmptySet(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM fuelmatch.drivers WHERE driver_id = \\$1 FOR UPDATE").
		WithArgs("drv_1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("UPDATE fuelmatch.matches SET is_active = FALSE").
		WithArgs("drv_1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectPrepare("INSERT INTO fuelmatch.matches")
	mock.ExpectCommit()

	err = ds.SaveMatches(context.Background(), "drv_1", nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMatches_UnknownDriverRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM fuelmatch.drivers WHERE driver_id = \\$1 FOR UPDATE").
		WithArgs("drv_missing").
		WillReturnError(errors.New("sql: no rows in result set"))
	mock.ExpectRollback()

	err = ds.SaveMatches(context.Background(), "drv_missing", nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed insert must leave the previous active set in place.
func TestSaveMatches_InsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	matches := []model.Match{
		{TransactionID: "txn_1", FuelLogID: "flog_1", MatchType: model.MatchDateCost, Confidence: 0.95},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM fuelmatch.drivers WHERE driver_id = \\$1 FOR UPDATE").
		WithArgs("drv_1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("UPDATE fuelmatch.matches SET is_active = FALSE").
		WithArgs("drv_1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO fuelmatch.matches")
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "drv_1", "txn_1", "flog_1", model.MatchDateCost, 0.95, sqlmock.AnyArg()).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	err = ds.SaveMatches(context.Background(), "drv_1", matches)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInternalServer, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveMatchesForDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "match_id", "driver_id", "transaction_id", "fuel_log_id", "match_type", "confidence", "is_active", "created_at"}).
		AddRow(1, "match_1", "drv_1", "txn_1", "flog_1", "date_cost", 0.95, true, now).
		AddRow(2, "match_2", "drv_1", "txn_2", "flog_2", "date_supplier_state", 0.60, true, now)

	mock.ExpectQuery("SELECT id, match_id, driver_id, transaction_id, fuel_log_id, match_type, confidence, is_active, created_at FROM fuelmatch.matches").
		WithArgs("drv_1").
		WillReturnRows(rows)

	set, err := ds.GetActiveMatchesForDriver(context.Background(), "drv_1")
	assert.NoError(t, err)
	assert.Len(t, set.Matches, 2)
	assert.Contains(t, set.MatchedTransactionIDs, "txn_1")
	assert.Contains(t, set.MatchedTransactionIDs, "txn_2")
	assert.Contains(t, set.MatchedFuelLogIDs, "flog_1")
	assert.Equal(t, model.MatchDateSupplierState, set.Matches[1].MatchType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveMatchesForDriver_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT id, match_id, driver_id, transaction_id, fuel_log_id, match_type, confidence, is_active, created_at FROM fuelmatch.matches").
		WithArgs("drv_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "match_id", "driver_id", "transaction_id", "fuel_log_id", "match_type", "confidence", "is_active", "created_at"}))

	set, err := ds.GetActiveMatchesForDriver(context.Background(), "drv_1")
	assert.NoError(t, err)
	assert.Empty(t, set.Matches)
	assert.Empty(t, set.MatchedTransactionIDs)
	assert.Empty(t, set.MatchedFuelLogIDs)
}
