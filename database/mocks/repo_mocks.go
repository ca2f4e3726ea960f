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
package mocks

import (
	"context"

	"github.com/freightdesk/fuelmatch/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Driver methods

func (m *MockDataSource) CreateDriver(ctx context.Context, drv model.Driver) (model.Driver, error) {
	args := m.Called(ctx, drv)
	return args.Get(0).(model.Driver), args.Error(1)
}

func (m *MockDataSource) GetDriverByID(ctx context.Context, id string) (*model.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Driver), args.Error(1)
}

func (m *MockDataSource) GetAllDrivers(ctx context.Context, limit, offset int) ([]model.Driver, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Driver), args.Error(1)
}

func (m *MockDataSource) FindDriversByBranch(ctx context.Context, branch model.Branch) ([]model.Driver, error) {
	args := m.Called(ctx, branch)
	return args.Get(0).([]model.Driver), args.Error(1)
}

func (m *MockDataSource) DeactivateDriver(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Transaction methods

func (m *MockDataSource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockDataSource) TransactionExistsByRef(ctx context.Context, reference string, lineNumber int) (bool, error) {
	args := m.Called(ctx, reference, lineNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetTransactionsForDriver(ctx context.Context, driverID string, window model.Window) ([]*model.Transaction, error) {
	args := m.Called(ctx, driverID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

// FuelLog methods

func (m *MockDataSource) RecordFuelLog(ctx context.Context, fl *model.FuelLog) (*model.FuelLog, error) {
	args := m.Called(ctx, fl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FuelLog), args.Error(1)
}

func (m *MockDataSource) GetFuelLog(ctx context.Context, id string) (*model.FuelLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FuelLog), args.Error(1)
}

func (m *MockDataSource) UpdateFuelLog(ctx context.Context, fl *model.FuelLog) error {
	args := m.Called(ctx, fl)
	return args.Error(0)
}

func (m *MockDataSource) GetFuelLogsForDriver(ctx context.Context, driverID string, window model.Window) ([]*model.FuelLog, error) {
	args := m.Called(ctx, driverID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FuelLog), args.Error(1)
}

// Match methods

func (m *MockDataSource) SaveMatches(ctx context.Context, driverID string, matches []model.Match) error {
	args := m.Called(ctx, driverID, matches)
	return args.Error(0)
}

func (m *MockDataSource) GetActiveMatchesForDriver(ctx context.Context, driverID string) (*model.ActiveMatchSet, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ActiveMatchSet), args.Error(1)
}
