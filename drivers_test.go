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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/freightdesk/fuelmatch/model"
)

func rosterPage(drivers ...model.Driver) []model.Driver {
	return drivers
}

func TestResolveDriverByNameExact(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	roster := rosterPage(
		model.Driver{DriverID: "drv_1", Name: "John Smith", IsActive: true},
		model.Driver{DriverID: "drv_2", Name: "Maria Garcia", IsActive: true},
	)
	mockDS.On("GetAllDrivers", mock.Anything, 500, 0).Return(roster, nil)

	// card processors emit surname-first uppercase
	driver, err := svc.ResolveDriverByName(ctx, "SMITH, JOHN")
	assert.NoError(t, err)
	assert.Equal(t, "drv_1", driver.DriverID)
}

func TestResolveDriverByNameAlias(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	roster := rosterPage(
		model.Driver{DriverID: "drv_1", Name: "Jonathan Smith", Alias: "John Smith", IsActive: true},
	)
	mockDS.On("GetAllDrivers", mock.Anything, 500, 0).Return(roster, nil)

	driver, err := svc.ResolveDriverByName(ctx, "John Smith")
	assert.NoError(t, err)
	assert.Equal(t, "drv_1", driver.DriverID)
}

func TestResolveDriverByNameFuzzy(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	roster := rosterPage(
		model.Driver{DriverID: "drv_1", Name: "John Smith", IsActive: true},
		model.Driver{DriverID: "drv_2", Name: "Maria Garcia", IsActive: true},
	)
	mockDS.On("GetAllDrivers", mock.Anything, 500, 0).Return(roster, nil)

	// one-letter typo still resolves
	driver, err := svc.ResolveDriverByName(ctx, "Jon Smith")
	assert.NoError(t, err)
	assert.Equal(t, "drv_1", driver.DriverID)
}

func TestResolveDriverByNameNoMatch(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	roster := rosterPage(
		model.Driver{DriverID: "drv_1", Name: "John Smith", IsActive: true},
	)
	mockDS.On("GetAllDrivers", mock.Anything, 500, 0).Return(roster, nil)

	_, err := svc.ResolveDriverByName(ctx, "Dmitri Volkov")
	assert.Error(t, err)
}

func TestResolveDriverByNameSkipsInactive(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	roster := rosterPage(
		model.Driver{DriverID: "drv_1", Name: "John Smith", IsActive: false},
	)
	mockDS.On("GetAllDrivers", mock.Anything, 500, 0).Return(roster, nil)

	_, err := svc.ResolveDriverByName(ctx, "John Smith")
	assert.Error(t, err)
}

func TestNormalizeNameTokenOrder(t *testing.T) {
	assert.Equal(t, normalizeName("John Smith"), normalizeName("SMITH, JOHN"))
	assert.Equal(t, normalizeName("  John   Smith "), normalizeName("john smith"))
	assert.NotEqual(t, normalizeName("John Smith"), normalizeName("John Smythe"))
}

func TestCreateDriverValidation(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	_, err := svc.CreateDriver(ctx, model.Driver{Name: "John Smith", Branch: "eastcoast"})
	assert.Error(t, err)

	_, err = svc.CreateDriver(ctx, model.Driver{Name: "   ", Branch: model.BranchMidwest})
	assert.Error(t, err)

	created := model.Driver{DriverID: "drv_1", Name: "John Smith", Branch: model.BranchMidwest, IsActive: true}
	mockDS.On("CreateDriver", mock.Anything, mock.Anything).Return(created, nil)

	driver, err := svc.CreateDriver(ctx, model.Driver{Name: "John Smith", Branch: model.BranchMidwest})
	assert.NoError(t, err)
	assert.Equal(t, "drv_1", driver.DriverID)
}

func TestUpdateFuelLogTriggersRematch(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	fl := &model.FuelLog{FuelLogID: "flog_1", DriverID: "drv_1", LogDate: day(2024, 3, 14), Gallons: 52.5, Cost: 187.43}

	mockDS.On("UpdateFuelLog", mock.Anything, fl).Return(nil)
	mockDS.On("GetDriverByID", mock.Anything, "drv_1").Return(testDriver(), nil)
	mockDS.On("GetTransactionsForDriver", mock.Anything, "drv_1", mock.Anything).Return([]*model.Transaction{}, nil)
	mockDS.On("GetFuelLogsForDriver", mock.Anything, "drv_1", mock.Anything).Return([]*model.FuelLog{fl}, nil)
	mockDS.On("SaveMatches", mock.Anything, "drv_1", mock.Anything).Return(nil)

	updated, err := svc.UpdateFuelLog(ctx, fl)
	assert.NoError(t, err)
	assert.Equal(t, "flog_1", updated.FuelLogID)

	mockDS.AssertCalled(t, "SaveMatches", mock.Anything, "drv_1", mock.Anything)
}

func TestListDriversByBranch(t *testing.T) {
	svc, mockDS := newTestFuelmatch(t)
	ctx := context.Background()

	roster := rosterPage(
		model.Driver{DriverID: "drv_1", Name: "John Smith", Branch: model.BranchMidwest, IsActive: true},
	)
	mockDS.On("FindDriversByBranch", mock.Anything, model.BranchMidwest).Return(roster, nil)

	drivers, err := svc.ListDriversByBranch(ctx, model.BranchMidwest)
	assert.NoError(t, err)
	assert.Len(t, drivers, 1)

	_, err = svc.ListDriversByBranch(ctx, model.Branch("eastcoast"))
	assert.Error(t, err)
	mockDS.AssertNotCalled(t, "FindDriversByBranch", mock.Anything, model.Branch("eastcoast"))
}
