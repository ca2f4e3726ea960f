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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/freightdesk/fuelmatch/internal/apierror"
	"github.com/freightdesk/fuelmatch/model"
)

func TestCreateDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	drv := model.Driver{
		Name:         "SMITH, JOHN",
		Alias:        "J. Smith",
		Branch:       model.BranchMidwest,
		CardLastFour: "4417",
	}

	mock.ExpectExec("INSERT INTO fuelmatch.drivers").
		WithArgs(sqlmock.AnyArg(), drv.Name, drv.Alias, drv.Branch, drv.CardLastFour, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateDriver(context.Background(), drv)
	assert.NoError(t, err)
	assert.NotEmpty(t, created.DriverID)
	assert.True(t, created.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDriverByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	row := sqlmock.NewRows([]string{"id", "driver_id", "name", "alias", "branch", "card_last_four", "is_active", "created_at"}).
		AddRow(1, "drv_1", "SMITH, JOHN", "", "midwest", "4417", true, time.Now())

	mock.ExpectQuery("SELECT id, driver_id, name, alias, branch, card_last_four, is_active, created_at FROM fuelmatch.drivers WHERE driver_id = \\$1").
		WithArgs("drv_1").
		WillReturnRows(row)

	drv, err := ds.GetDriverByID(context.Background(), "drv_1")
	assert.NoError(t, err)
	assert.Equal(t, "SMITH, JOHN", drv.Name)
	assert.Equal(t, model.BranchMidwest, drv.Branch)
}

func TestGetDriverByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT id, driver_id, name, alias, branch, card_last_four, is_active, created_at FROM fuelmatch.drivers WHERE driver_id = \\$1").
		WithArgs("drv_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "driver_id", "name", "alias", "branch", "card_last_four", "is_active", "created_at"}))

	_, err = ds.GetDriverByID(context.Background(), "drv_missing")
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetAllDrivers(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{"id", "driver_id", "name", "alias", "branch", "card_last_four", "is_active", "created_at"}).
		AddRow(1, "drv_1", "DOE, JANE", "", "south", "9921", true, time.Now()).
		AddRow(2, "drv_2", "SMITH, JOHN", "", "midwest", "4417", false, time.Now())

	mock.ExpectQuery("SELECT id, driver_id, name, alias, branch, card_last_four, is_active, created_at FROM fuelmatch.drivers ORDER BY name LIMIT \\$1 OFFSET \\$2").
		WithArgs(50, 0).
		WillReturnRows(rows)

	drivers, err := ds.GetAllDrivers(context.Background(), 50, 0)
	assert.NoError(t, err)
	assert.Len(t, drivers, 2)
	assert.Equal(t, "DOE, JANE", drivers[0].Name)
	assert.False(t, drivers[1].IsActive)
}

func TestDeactivateDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE fuelmatch.drivers SET is_active = FALSE WHERE driver_id = \\$1").
		WithArgs("drv_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.DeactivateDriver(context.Background(), "drv_1")
	assert.NoError(t, err)
}

func TestDeactivateDriver_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE fuelmatch.drivers SET is_active = FALSE WHERE driver_id = \\$1").
		WithArgs("drv_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.DeactivateDriver(context.Background(), "drv_missing")
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}
