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

const transactionColumns = `id, transaction_id, driver_id, transaction_reference, line_number,
		transaction_date, posting_date, billing_amount, line_amount, gl_code,
		supplier_name, supplier_city, supplier_state, fuel_quantity, fuel_unit_cost,
		odometer_reading, status, created_at`

func (d Datasource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	ctx, span := otel.Tracer("Transaction").Start(ctx, "Saving transaction to db")
	defer span.End()

	if txn.TransactionID == "" {
		txn.TransactionID = model.GenerateUUIDWithSuffix("txn")
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	postingDate := sql.NullTime{Time: txn.PostingDate, Valid: !txn.PostingDate.IsZero()}

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO fuelmatch.transactions (transaction_id, driver_id, transaction_reference, line_number,
			transaction_date, posting_date, billing_amount, line_amount, gl_code,
			supplier_name, supplier_city, supplier_state, fuel_quantity, fuel_unit_cost,
			odometer_reading, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		txn.TransactionID, txn.DriverID, txn.TransactionReference, txn.LineNumber,
		txn.TransactionDate, postingDate, txn.BillingAmount, txn.LineAmount, txn.GLCode,
		txn.SupplierName, txn.SupplierCity, txn.SupplierState, txn.FuelQuantity, txn.FuelUnitCost,
		txn.OdometerReading, txn.Status, txn.CreatedAt,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record transaction", err)
	}

	return txn, nil
}

func (d Datasource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := otel.Tracer("Transaction").Start(ctx, "Fetching transaction from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM fuelmatch.transactions
		WHERE transaction_id = $1
	`, id)

	txn, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transaction", err)
	}

	return txn, nil
}

// TransactionExistsByRef checks the (transaction_reference, line_number)
// identity so re-uploads of the same statement skip already stored rows.
func (d Datasource) TransactionExistsByRef(ctx context.Context, reference string, lineNumber int) (bool, error) {
	ctx, span := otel.Tracer("Transaction").Start(ctx, "Checking transaction existence by reference")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fuelmatch.transactions
			WHERE transaction_reference = $1 AND line_number = $2
		)
	`, reference, lineNumber).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check if transaction exists", err)
	}

	return exists, nil
}

func (d Datasource) GetTransactionsForDriver(ctx context.Context, driverID string, window model.Window) ([]*model.Transaction, error) {
	ctx, span := otel.Tracer("Transaction").Start(ctx, "Fetching transactions for driver")
	defer span.End()

	query := `
		SELECT ` + transactionColumns + `
		FROM fuelmatch.transactions
		WHERE driver_id = $1`
	args := []interface{}{driverID}

	if !window.IsZero() {
		query += ` AND transaction_date >= $2 AND transaction_date < $3`
		args = append(args, model.DayOf(window.Start), model.DayOf(window.End).AddDate(0, 0, 1))
	}
	query += ` ORDER BY transaction_date, line_number`

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions", err)
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating transactions", err)
	}

	return txns, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	txn := &model.Transaction{}
	var postingDate sql.NullTime
	err := row.Scan(
		&txn.ID, &txn.TransactionID, &txn.DriverID, &txn.TransactionReference, &txn.LineNumber,
		&txn.TransactionDate, &postingDate, &txn.BillingAmount, &txn.LineAmount, &txn.GLCode,
		&txn.SupplierName, &txn.SupplierCity, &txn.SupplierState, &txn.FuelQuantity, &txn.FuelUnitCost,
		&txn.OdometerReading, &txn.Status, &txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if postingDate.Valid {
		txn.PostingDate = postingDate.Time
	}
	return txn, nil
}
