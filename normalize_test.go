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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freightdesk/fuelmatch/model"
)

func TestNormalizeTransaction(t *testing.T) {
	quantity := 52.5
	txn := &model.Transaction{
		TransactionID:   "txn_1",
		DriverID:        "drv_1",
		TransactionDate: time.Date(2024, 3, 14, 16, 42, 0, 0, time.FixedZone("CST", -6*3600)),
		BillingAmount:   187.43,
		FuelQuantity:    &quantity,
		SupplierName:    "Pilot Travel Center #312",
		SupplierState:   "IA",
	}

	record, err := NormalizeTransaction(txn)
	assert.NoError(t, err)
	assert.Equal(t, "txn_1", record.ID)
	assert.Equal(t, "drv_1", record.DriverID)
	assert.Equal(t, 187.43, record.Amount)
	assert.Equal(t, &quantity, record.Quantity)
	assert.Equal(t, "Pilot Travel Center #312", record.SupplierName)
	assert.Equal(t, "IA", record.SupplierState)

	// time of day and zone are dropped
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), record.Date)
}

func TestNormalizeTransactionMissingDate(t *testing.T) {
	txn := &model.Transaction{TransactionID: "txn_2", BillingAmount: 50}

	_, err := NormalizeTransaction(txn)
	assert.Error(t, err)

	var normErr *NormalizationError
	assert.ErrorAs(t, err, &normErr)
	assert.Equal(t, "txn_2", normErr.RecordID)
}

func TestNormalizeTransactionMissingAmount(t *testing.T) {
	txn := &model.Transaction{
		TransactionID:   "txn_3",
		TransactionDate: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	_, err := NormalizeTransaction(txn)
	var normErr *NormalizationError
	assert.ErrorAs(t, err, &normErr)
	assert.Equal(t, "txn_3", normErr.RecordID)
}

func TestNormalizeFuelLog(t *testing.T) {
	fl := &model.FuelLog{
		FuelLogID:   "flog_1",
		DriverID:    "drv_1",
		LogDate:     time.Date(2024, 3, 14, 9, 5, 0, 0, time.UTC),
		Gallons:     52.5,
		Cost:        187.43,
		SellerName:  "Pilot",
		SellerState: "IA",
	}

	record, err := NormalizeFuelLog(fl)
	assert.NoError(t, err)
	assert.Equal(t, "flog_1", record.ID)
	assert.Equal(t, 187.43, record.Amount)
	assert.NotNil(t, record.Quantity)
	assert.Equal(t, 52.5, *record.Quantity)
	assert.Equal(t, "Pilot", record.SupplierName)
	assert.Equal(t, "IA", record.SupplierState)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), record.Date)
}

func TestNormalizeFuelLogZeroGallons(t *testing.T) {
	fl := &model.FuelLog{
		FuelLogID: "flog_2",
		LogDate:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Cost:      25.00,
	}

	record, err := NormalizeFuelLog(fl)
	assert.NoError(t, err)
	assert.Nil(t, record.Quantity)
}

func TestNormalizeFuelLogMissingCost(t *testing.T) {
	fl := &model.FuelLog{
		FuelLogID: "flog_3",
		LogDate:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	_, err := NormalizeFuelLog(fl)
	var normErr *NormalizationError
	assert.ErrorAs(t, err, &normErr)
	assert.Equal(t, "flog_3", normErr.RecordID)
}
