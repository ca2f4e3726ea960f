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
package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/freightdesk/fuelmatch/model"
)

// CreateDriver is the request body for registering a new driver.
type CreateDriver struct {
	Name         string `json:"name"`
	Alias        string `json:"alias"`
	Branch       string `json:"branch"`
	CardLastFour string `json:"card_last_four"`
}

func (d *CreateDriver) ValidateCreateDriver() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Branch, validation.Required, validation.By(func(value interface{}) error {
			branch, ok := value.(string)
			if !ok || !model.Branch(branch).Valid() {
				return errors.New("branch must be one of midwest, south, mountain, westcoast")
			}
			return nil
		})),
		validation.Field(&d.CardLastFour, validation.Length(0, 4)),
	)
}

func (d *CreateDriver) ToDriver() model.Driver {
	return model.Driver{
		Name:         d.Name,
		Alias:        d.Alias,
		Branch:       model.Branch(d.Branch),
		CardLastFour: d.CardLastFour,
		IsActive:     true,
	}
}

// RunMatching is the request body for a matching run. Either a whole
// quarter or an explicit window may be given; both empty means all of
// the driver's records.
type RunMatching struct {
	Year    int    `json:"year,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

func (r *RunMatching) ValidateRunMatching() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Quarter, validation.Min(0), validation.Max(4)),
		validation.Field(&r.Year, validation.Min(0)),
		validation.Field(&r.Start, validation.Date("2006-01-02")),
		validation.Field(&r.End, validation.Date("2006-01-02")),
	)
}

// UpdateFuelLog is the request body for editing a fuel log. Zero
// fields keep their stored value, matching spreadsheet-style edits.
type UpdateFuelLog struct {
	VehicleID        *string  `json:"vehicle_id,omitempty"`
	LogDate          *string  `json:"log_date,omitempty"`
	InvoiceNumber    *string  `json:"invoice_number,omitempty"`
	Gallons          *float64 `json:"gallons,omitempty"`
	Cost             *float64 `json:"cost,omitempty"`
	SellerName       *string  `json:"seller_name,omitempty"`
	SellerState      *string  `json:"seller_state,omitempty"`
	OdometerReading  *int64   `json:"odometer_reading,omitempty"`
	ReceiptReference *string  `json:"receipt_reference,omitempty"`
}

func (u *UpdateFuelLog) ValidateUpdateFuelLog() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.LogDate, validation.Date("2006-01-02")),
		validation.Field(&u.Gallons, validation.Min(0.0)),
		validation.Field(&u.Cost, validation.Min(0.0)),
	)
}

// Apply overlays the provided fields onto the stored fuel log. The log
// date is the edit matching cares about most; moving it can create or
// break a match on the next run.
func (u *UpdateFuelLog) Apply(fl *model.FuelLog) error {
	if u.LogDate != nil {
		logDate, err := time.Parse("2006-01-02", *u.LogDate)
		if err != nil {
			return err
		}
		fl.LogDate = logDate
	}
	if u.VehicleID != nil {
		fl.VehicleID = *u.VehicleID
	}
	if u.InvoiceNumber != nil {
		fl.InvoiceNumber = *u.InvoiceNumber
	}
	if u.Gallons != nil {
		fl.Gallons = *u.Gallons
	}
	if u.Cost != nil {
		fl.Cost = *u.Cost
	}
	if u.SellerName != nil {
		fl.SellerName = *u.SellerName
	}
	if u.SellerState != nil {
		fl.SellerState = *u.SellerState
	}
	if u.OdometerReading != nil {
		fl.OdometerReading = u.OdometerReading
	}
	if u.ReceiptReference != nil {
		fl.ReceiptReference = *u.ReceiptReference
	}
	return nil
}
