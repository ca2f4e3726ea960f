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

	"github.com/freightdesk/fuelmatch/model"
)

// NormalizationError marks a single record that cannot be reduced to a
// comparison record. The batch skips the record and keeps going; it is
// never fatal to a matching run.
type NormalizationError struct {
	RecordID string
	Reason   string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize record %s: %s", e.RecordID, e.Reason)
}

// NormalizeTransaction reduces an expense-card transaction to the
// canonical comparison shape: billing amount becomes the amount, fuel
// quantity carries over when present, and the date drops its
// time-of-day component.
func NormalizeTransaction(txn *model.Transaction) (model.ComparisonRecord, error) {
	if txn.TransactionDate.IsZero() {
		return model.ComparisonRecord{}, &NormalizationError{RecordID: txn.TransactionID, Reason: "missing transaction date"}
	}
	if txn.BillingAmount == 0 {
		return model.ComparisonRecord{}, &NormalizationError{RecordID: txn.TransactionID, Reason: "missing billing amount"}
	}

	return model.ComparisonRecord{
		ID:            txn.TransactionID,
		DriverID:      txn.DriverID,
		Date:          model.DayOf(txn.TransactionDate),
		Amount:        txn.BillingAmount,
		Quantity:      txn.FuelQuantity,
		SupplierName:  txn.SupplierName,
		SupplierState: txn.SupplierState,
	}, nil
}

// NormalizeFuelLog reduces a fuel-card log to the canonical comparison
// shape: cost becomes the amount, gallons becomes the quantity, and
// seller fields map onto the supplier fields.
func NormalizeFuelLog(fl *model.FuelLog) (model.ComparisonRecord, error) {
	if fl.LogDate.IsZero() {
		return model.ComparisonRecord{}, &NormalizationError{RecordID: fl.FuelLogID, Reason: "missing log date"}
	}
	if fl.Cost == 0 {
		return model.ComparisonRecord{}, &NormalizationError{RecordID: fl.FuelLogID, Reason: "missing cost"}
	}

	gallons := fl.Gallons
	var quantity *float64
	if gallons != 0 {
		quantity = &gallons
	}

	return model.ComparisonRecord{
		ID:            fl.FuelLogID,
		DriverID:      fl.DriverID,
		Date:          model.DayOf(fl.LogDate),
		Amount:        fl.Cost,
		Quantity:      quantity,
		SupplierName:  fl.SellerName,
		SupplierState: fl.SellerState,
	}, nil
}
