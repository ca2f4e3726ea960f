package model

import (
	"encoding/json"
	"time"
)

const (
	TransactionStatusPending = "pending"
	TransactionStatusPosted  = "posted"
	TransactionStatusVoided  = "voided"
)

// Transaction is an expense-card record tied to a driver. Rows are
// immutable once persisted except for administrative correction, and
// are uniquely identified by (transaction_reference, line_number).
type Transaction struct {
	ID                   int64     `json:"-"`
	TransactionID        string    `json:"transaction_id"`
	DriverID             string    `json:"driver_id"`
	TransactionReference string    `json:"transaction_reference"`
	LineNumber           int       `json:"line_number"`
	TransactionDate      time.Time `json:"transaction_date"`
	PostingDate          time.Time `json:"posting_date"`
	BillingAmount        float64   `json:"billing_amount"`
	LineAmount           float64   `json:"line_amount"`
	GLCode               string    `json:"gl_code,omitempty"`
	SupplierName         string    `json:"supplier_name,omitempty"`
	SupplierCity         string    `json:"supplier_city,omitempty"`
	SupplierState        string    `json:"supplier_state,omitempty"`
	FuelQuantity         *float64  `json:"fuel_quantity,omitempty"`
	FuelUnitCost         *float64  `json:"fuel_unit_cost,omitempty"`
	OdometerReading      *int64    `json:"odometer_reading,omitempty"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

func (t *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// FuelLog is a fuel-card purchase record tied to a driver and vehicle.
// Unlike transactions, fuel logs stay editable through the UI.
type FuelLog struct {
	ID               int64     `json:"-"`
	FuelLogID        string    `json:"fuel_log_id"`
	DriverID         string    `json:"driver_id"`
	VehicleID        string    `json:"vehicle_id"`
	LogDate          time.Time `json:"log_date"`
	InvoiceNumber    string    `json:"invoice_number"`
	Gallons          float64   `json:"gallons"`
	Cost             float64   `json:"cost"`
	SellerName       string    `json:"seller_name,omitempty"`
	SellerState      string    `json:"seller_state,omitempty"`
	OdometerReading  *int64    `json:"odometer_reading,omitempty"`
	ReceiptReference string    `json:"receipt_reference,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (f *FuelLog) ToJSON() ([]byte, error) {
	return json.Marshal(f)
}
