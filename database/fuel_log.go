package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/freightdesk/fuelmatch/internal/apierror"
	"github.com/freightdesk/fuelmatch/model"
)

const fuelLogColumns = `id, fuel_log_id, driver_id, vehicle_id, log_date, invoice_number,
		gallons, cost, seller_name, seller_state, odometer_reading, receipt_reference, created_at`

func (d Datasource) RecordFuelLog(ctx context.Context, fl *model.FuelLog) (*model.FuelLog, error) {
	ctx, span := otel.Tracer("FuelLog").Start(ctx, "Saving fuel log to db")
	defer span.End()

	if fl.FuelLogID == "" {
		fl.FuelLogID = model.GenerateUUIDWithSuffix("flog")
	}
	if fl.CreatedAt.IsZero() {
		fl.CreatedAt = time.Now()
	}

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO fuelmatch.fuel_logs (fuel_log_id, driver_id, vehicle_id, log_date, invoice_number,
			gallons, cost, seller_name, seller_state, odometer_reading, receipt_reference, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		fl.FuelLogID, fl.DriverID, fl.VehicleID, fl.LogDate, fl.InvoiceNumber,
		fl.Gallons, fl.Cost, fl.SellerName, fl.SellerState, fl.OdometerReading, fl.ReceiptReference, fl.CreatedAt,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record fuel log", err)
	}

	return fl, nil
}

func (d Datasource) GetFuelLog(ctx context.Context, id string) (*model.FuelLog, error) {
	ctx, span := otel.Tracer("FuelLog").Start(ctx, "Fetching fuel log from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+fuelLogColumns+`
		FROM fuelmatch.fuel_logs
		WHERE fuel_log_id = $1
	`, id)

	fl, err := scanFuelLog(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Fuel log with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve fuel log", err)
	}

	return fl, nil
}

// UpdateFuelLog edits a fuel log in place. Fuel logs are the mutable
// side of matching; a successful edit is expected to be followed by a
// re-run of matching for the driver.
func (d Datasource) UpdateFuelLog(ctx context.Context, fl *model.FuelLog) error {
	ctx, span := otel.Tracer("FuelLog").Start(ctx, "Updating fuel log")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE fuelmatch.fuel_logs
		SET log_date = $2, invoice_number = $3, gallons = $4, cost = $5,
			seller_name = $6, seller_state = $7, odometer_reading = $8, receipt_reference = $9
		WHERE fuel_log_id = $1
	`, fl.FuelLogID, fl.LogDate, fl.InvoiceNumber, fl.Gallons, fl.Cost,
		fl.SellerName, fl.SellerState, fl.OdometerReading, fl.ReceiptReference)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update fuel log", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update fuel log", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Fuel log with ID '%s' not found", fl.FuelLogID), nil)
	}

	return nil
}

func (d Datasource) GetFuelLogsForDriver(ctx context.Context, driverID string, window model.Window) ([]*model.FuelLog, error) {
	ctx, span := otel.Tracer("FuelLog").Start(ctx, "Fetching fuel logs for driver")
	defer span.End()

	query := `
		SELECT ` + fuelLogColumns + `
		FROM fuelmatch.fuel_logs
		WHERE driver_id = $1`
	args := []interface{}{driverID}

	if !window.IsZero() {
		query += ` AND log_date >= $2 AND log_date < $3`
		args = append(args, model.DayOf(window.Start), model.DayOf(window.End).AddDate(0, 0, 1))
	}
	query += ` ORDER BY log_date, invoice_number`

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve fuel logs", err)
	}
	defer rows.Close()

	var logs []*model.FuelLog
	for rows.Next() {
		fl, err := scanFuelLog(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan fuel log", err)
		}
		logs = append(logs, fl)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating fuel logs", err)
	}

	return logs, nil
}

func scanFuelLog(row rowScanner) (*model.FuelLog, error) {
	fl := &model.FuelLog{}
	err := row.Scan(
		&fl.ID, &fl.FuelLogID, &fl.DriverID, &fl.VehicleID, &fl.LogDate, &fl.InvoiceNumber,
		&fl.Gallons, &fl.Cost, &fl.SellerName, &fl.SellerState, &fl.OdometerReading,
		&fl.ReceiptReference, &fl.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return fl, nil
}
