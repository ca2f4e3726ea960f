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

	"github.com/freightdesk/fuelmatch/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	driver      // Driver records
	transaction // Expense-card transactions
	fuelLog     // Fuel-card logs
	match       // Resolved matches
}

// driver defines methods for handling drivers.
type driver interface {
	CreateDriver(ctx context.Context, drv model.Driver) (model.Driver, error)
	GetDriverByID(ctx context.Context, id string) (*model.Driver, error)
	GetAllDrivers(ctx context.Context, limit, offset int) ([]model.Driver, error)
	FindDriversByBranch(ctx context.Context, branch model.Branch) ([]model.Driver, error)
	DeactivateDriver(ctx context.Context, id string) error
}

// transaction defines methods for handling expense-card transactions.
type transaction interface {
	RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	TransactionExistsByRef(ctx context.Context, reference string, lineNumber int) (bool, error)
	GetTransactionsForDriver(ctx context.Context, driverID string, window model.Window) ([]*model.Transaction, error)
}

// fuelLog defines methods for handling fuel-card logs.
type fuelLog interface {
	RecordFuelLog(ctx context.Context, fl *model.FuelLog) (*model.FuelLog, error)
	GetFuelLog(ctx context.Context, id string) (*model.FuelLog, error)
	UpdateFuelLog(ctx context.Context, fl *model.FuelLog) error
	GetFuelLogsForDriver(ctx context.Context, driverID string, window model.Window) ([]*model.FuelLog, error)
}

// match defines methods for persisting and querying resolved matches.
type match interface {
	SaveMatches(ctx context.Context, driverID string, matches []model.Match) error
	GetActiveMatchesForDriver(ctx context.Context, driverID string) (*model.ActiveMatchSet, error)
}
