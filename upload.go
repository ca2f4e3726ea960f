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
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"

	"github.com/freightdesk/fuelmatch/model"
)

// UploadSummary reports the outcome of a statement or trip-sheet
// upload. Row-level failures are collected here rather than aborting
// the batch.
type UploadSummary struct {
	UploadID   string   `json:"upload_id"`
	Accepted   int      `json:"accepted"`
	Rejected   int      `json:"rejected"`
	Duplicates int      `json:"duplicates"`
	RowErrors  []string `json:"row_errors,omitempty"`
}

// transactionRow is one parsed row of a fuel-card statement, before it
// is resolved to a driver and persisted.
type transactionRow struct {
	TransactionReference string     `json:"transaction_reference"`
	LineNumber           int        `json:"line_number"`
	TransactionDate      time.Time  `json:"transaction_date"`
	PostingDate          time.Time  `json:"posting_date"`
	BillingAmount        float64    `json:"billing_amount"`
	LineAmount           float64    `json:"line_amount"`
	GLCode               string     `json:"gl_code"`
	CardholderName       string     `json:"cardholder_name"`
	SupplierName         string     `json:"supplier_name"`
	SupplierCity         string     `json:"supplier_city"`
	SupplierState        string     `json:"supplier_state"`
	FuelQuantity         *float64   `json:"fuel_quantity,omitempty"`
	FuelUnitCost         *float64   `json:"fuel_unit_cost,omitempty"`
	OdometerReading      *int64     `json:"odometer_reading,omitempty"`
}

func (r transactionRow) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TransactionReference, validation.Required),
		validation.Field(&r.LineNumber, validation.Min(1)),
		validation.Field(&r.TransactionDate, validation.Required),
		validation.Field(&r.BillingAmount, validation.Required),
		validation.Field(&r.CardholderName, validation.Required),
		validation.Field(&r.SupplierState, validation.Length(0, 2)),
	)
}

// fuelLogRow is one parsed row of a driver trip sheet.
type fuelLogRow struct {
	DriverName       string    `json:"driver_name"`
	VehicleID        string    `json:"vehicle_id"`
	LogDate          time.Time `json:"log_date"`
	InvoiceNumber    string    `json:"invoice_number"`
	Gallons          float64   `json:"gallons"`
	Cost             float64   `json:"cost"`
	SellerName       string    `json:"seller_name"`
	SellerState      string    `json:"seller_state"`
	OdometerReading  *int64    `json:"odometer_reading,omitempty"`
	ReceiptReference string    `json:"receipt_reference,omitempty"`
}

func (r fuelLogRow) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DriverName, validation.Required),
		validation.Field(&r.LogDate, validation.Required),
		validation.Field(&r.Gallons, validation.Required, validation.Min(0.0)),
		validation.Field(&r.Cost, validation.Required, validation.Min(0.0)),
		validation.Field(&r.SellerState, validation.Length(0, 2)),
	)
}

// UploadTransactions ingests a fuel-card statement (CSV or JSON).
// Rows that fail to parse, validate, or resolve to a driver are
// rejected individually; the batch continues. Drivers that received
// new rows are re-matched afterwards on a best-effort basis.
func (s *Fuelmatch) UploadTransactions(ctx context.Context, reader io.Reader, filename string) (*UploadSummary, error) {
	uploadID := model.GenerateUUIDWithSuffix("upload")

	tempFile, err := s.createAndStageTempFile(filename, reader)
	if err != nil {
		return nil, err
	}
	defer s.cleanupTempFile(tempFile)

	fileType, err := s.detectFileTypeFromTempFile(tempFile, filename)
	if err != nil {
		return nil, err
	}

	summary := &UploadSummary{UploadID: uploadID}
	affected := make(map[string]struct{})

	switch fileType {
	case "text/csv", "text/csv; charset=utf-8":
		err = s.parseTransactionsCSV(ctx, tempFile, summary, affected)
	case "application/json":
		err = s.parseTransactionsJSON(ctx, tempFile, summary, affected)
	default:
		return nil, errors.Errorf("unsupported file type: %s", fileType)
	}
	if err != nil {
		return nil, err
	}

	s.rematchAffectedDrivers(ctx, affected)
	return summary, nil
}

// UploadFuelLogs ingests driver trip sheets (CSV or JSON) with the
// same row-level error policy as UploadTransactions.
func (s *Fuelmatch) UploadFuelLogs(ctx context.Context, reader io.Reader, filename string) (*UploadSummary, error) {
	uploadID := model.GenerateUUIDWithSuffix("upload")

	tempFile, err := s.createAndStageTempFile(filename, reader)
	if err != nil {
		return nil, err
	}
	defer s.cleanupTempFile(tempFile)

	fileType, err := s.detectFileTypeFromTempFile(tempFile, filename)
	if err != nil {
		return nil, err
	}

	summary := &UploadSummary{UploadID: uploadID}
	affected := make(map[string]struct{})

	switch fileType {
	case "text/csv", "text/csv; charset=utf-8":
		err = s.parseFuelLogsCSV(ctx, tempFile, summary, affected)
	case "application/json":
		err = s.parseFuelLogsJSON(ctx, tempFile, summary, affected)
	default:
		return nil, errors.Errorf("unsupported file type: %s", fileType)
	}
	if err != nil {
		return nil, err
	}

	s.rematchAffectedDrivers(ctx, affected)
	return summary, nil
}

// rematchAffectedDrivers re-runs matching for every driver touched by
// an upload. Ingestion is already durable at this point, so a matching
// failure is logged and swallowed.
func (s *Fuelmatch) rematchAffectedDrivers(ctx context.Context, affected map[string]struct{}) {
	for driverID := range affected {
		if _, err := s.FindMatchesForDriver(ctx, driverID); err != nil {
			logrus.Warnf("post-upload matching failed for driver %s: %v", driverID, err)
		}
	}
}

func (s *Fuelmatch) parseTransactionsCSV(ctx context.Context, reader io.Reader, summary *UploadSummary, affected map[string]struct{}) error {
	csvReader := csv.NewReader(bufio.NewReader(reader))

	headers, err := csvReader.Read()
	if err != nil {
		return errors.Wrap(err, "error reading CSV headers")
	}

	columnMap, err := createColumnMap(headers, []string{"transaction_reference", "transaction_date", "billing_amount", "cardholder_name"})
	if err != nil {
		return err
	}

	rowNum := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			summary.reject(rowNum, err)
			continue
		}

		row, err := parseTransactionRow(record, columnMap)
		if err != nil {
			summary.reject(rowNum, err)
			continue
		}
		s.storeTransactionRow(ctx, rowNum, row, summary, affected)

		if rowNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	return nil
}

func (s *Fuelmatch) parseTransactionsJSON(ctx context.Context, reader io.Reader, summary *UploadSummary, affected map[string]struct{}) error {
	var rows []transactionRow
	if err := json.NewDecoder(reader).Decode(&rows); err != nil {
		return errors.Wrap(err, "error decoding JSON upload")
	}
	for i, row := range rows {
		s.storeTransactionRow(ctx, i+1, row, summary, affected)
	}
	return nil
}

// storeTransactionRow validates, resolves, dedupes and persists one
// statement row. All failure modes count against the summary.
func (s *Fuelmatch) storeTransactionRow(ctx context.Context, rowNum int, row transactionRow, summary *UploadSummary, affected map[string]struct{}) {
	if row.LineNumber == 0 {
		row.LineNumber = 1
	}
	if err := row.Validate(); err != nil {
		summary.reject(rowNum, err)
		return
	}

	driver, err := s.ResolveDriverByName(ctx, row.CardholderName)
	if err != nil {
		summary.reject(rowNum, errors.Wrapf(err, "unresolved cardholder %q", row.CardholderName))
		return
	}

	exists, err := s.datasource.TransactionExistsByRef(ctx, row.TransactionReference, row.LineNumber)
	if err != nil {
		summary.reject(rowNum, err)
		return
	}
	if exists {
		summary.Duplicates++
		return
	}

	txn := &model.Transaction{
		DriverID:             driver.DriverID,
		TransactionReference: row.TransactionReference,
		LineNumber:           row.LineNumber,
		TransactionDate:      row.TransactionDate,
		PostingDate:          row.PostingDate,
		BillingAmount:        row.BillingAmount,
		LineAmount:           row.LineAmount,
		GLCode:               row.GLCode,
		SupplierName:         row.SupplierName,
		SupplierCity:         row.SupplierCity,
		SupplierState:        strings.ToUpper(row.SupplierState),
		FuelQuantity:         row.FuelQuantity,
		FuelUnitCost:         row.FuelUnitCost,
		OdometerReading:      row.OdometerReading,
		Status:               model.TransactionStatusPosted,
	}
	if _, err := s.datasource.RecordTransaction(ctx, txn); err != nil {
		summary.reject(rowNum, err)
		return
	}

	summary.Accepted++
	affected[driver.DriverID] = struct{}{}
}

func (s *Fuelmatch) parseFuelLogsCSV(ctx context.Context, reader io.Reader, summary *UploadSummary, affected map[string]struct{}) error {
	csvReader := csv.NewReader(bufio.NewReader(reader))

	headers, err := csvReader.Read()
	if err != nil {
		return errors.Wrap(err, "error reading CSV headers")
	}

	columnMap, err := createColumnMap(headers, []string{"driver_name", "log_date", "gallons", "cost"})
	if err != nil {
		return err
	}

	rowNum := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			summary.reject(rowNum, err)
			continue
		}

		row, err := parseFuelLogRow(record, columnMap)
		if err != nil {
			summary.reject(rowNum, err)
			continue
		}
		s.storeFuelLogRow(ctx, rowNum, row, summary, affected)

		if rowNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	return nil
}

func (s *Fuelmatch) parseFuelLogsJSON(ctx context.Context, reader io.Reader, summary *UploadSummary, affected map[string]struct{}) error {
	var rows []fuelLogRow
	if err := json.NewDecoder(reader).Decode(&rows); err != nil {
		return errors.Wrap(err, "error decoding JSON upload")
	}
	for i, row := range rows {
		s.storeFuelLogRow(ctx, i+1, row, summary, affected)
	}
	return nil
}

func (s *Fuelmatch) storeFuelLogRow(ctx context.Context, rowNum int, row fuelLogRow, summary *UploadSummary, affected map[string]struct{}) {
	if err := row.Validate(); err != nil {
		summary.reject(rowNum, err)
		return
	}

	driver, err := s.ResolveDriverByName(ctx, row.DriverName)
	if err != nil {
		summary.reject(rowNum, errors.Wrapf(err, "unresolved driver %q", row.DriverName))
		return
	}

	fl := &model.FuelLog{
		DriverID:         driver.DriverID,
		VehicleID:        row.VehicleID,
		LogDate:          row.LogDate,
		InvoiceNumber:    row.InvoiceNumber,
		Gallons:          row.Gallons,
		Cost:             row.Cost,
		SellerName:       row.SellerName,
		SellerState:      strings.ToUpper(row.SellerState),
		OdometerReading:  row.OdometerReading,
		ReceiptReference: row.ReceiptReference,
	}
	if _, err := s.datasource.RecordFuelLog(ctx, fl); err != nil {
		summary.reject(rowNum, err)
		return
	}

	summary.Accepted++
	affected[driver.DriverID] = struct{}{}
}

func (u *UploadSummary) reject(rowNum int, err error) {
	u.Rejected++
	u.RowErrors = append(u.RowErrors, errors.Wrapf(err, "row %d", rowNum).Error())
}

func parseTransactionRow(record []string, columnMap map[string]int) (transactionRow, error) {
	reference, err := getRequiredField(record, columnMap, "transaction_reference")
	if err != nil {
		return transactionRow{}, err
	}
	dateStr, err := getRequiredField(record, columnMap, "transaction_date")
	if err != nil {
		return transactionRow{}, err
	}
	amountStr, err := getRequiredField(record, columnMap, "billing_amount")
	if err != nil {
		return transactionRow{}, err
	}
	cardholder, err := getRequiredField(record, columnMap, "cardholder_name")
	if err != nil {
		return transactionRow{}, err
	}

	row := transactionRow{
		TransactionReference: reference,
		LineNumber:           int(parseFloat(getOptionalField(record, columnMap, "line_number"))),
		TransactionDate:      parseTime(dateStr),
		PostingDate:          parseTime(getOptionalField(record, columnMap, "posting_date")),
		BillingAmount:        parseFloat(amountStr),
		LineAmount:           parseFloat(getOptionalField(record, columnMap, "line_amount")),
		GLCode:               getOptionalField(record, columnMap, "gl_code"),
		CardholderName:       cardholder,
		SupplierName:         getOptionalField(record, columnMap, "supplier_name"),
		SupplierCity:         getOptionalField(record, columnMap, "supplier_city"),
		SupplierState:        getOptionalField(record, columnMap, "supplier_state"),
		FuelQuantity:         parseOptionalFloat(getOptionalField(record, columnMap, "fuel_quantity")),
		FuelUnitCost:         parseOptionalFloat(getOptionalField(record, columnMap, "fuel_unit_cost")),
		OdometerReading:      parseOptionalInt(getOptionalField(record, columnMap, "odometer_reading")),
	}
	return row, nil
}

func parseFuelLogRow(record []string, columnMap map[string]int) (fuelLogRow, error) {
	driverName, err := getRequiredField(record, columnMap, "driver_name")
	if err != nil {
		return fuelLogRow{}, err
	}
	dateStr, err := getRequiredField(record, columnMap, "log_date")
	if err != nil {
		return fuelLogRow{}, err
	}
	gallonsStr, err := getRequiredField(record, columnMap, "gallons")
	if err != nil {
		return fuelLogRow{}, err
	}
	costStr, err := getRequiredField(record, columnMap, "cost")
	if err != nil {
		return fuelLogRow{}, err
	}

	row := fuelLogRow{
		DriverName:       driverName,
		VehicleID:        getOptionalField(record, columnMap, "vehicle_id"),
		LogDate:          parseTime(dateStr),
		InvoiceNumber:    getOptionalField(record, columnMap, "invoice_number"),
		Gallons:          parseFloat(gallonsStr),
		Cost:             parseFloat(costStr),
		SellerName:       getOptionalField(record, columnMap, "seller_name"),
		SellerState:      getOptionalField(record, columnMap, "seller_state"),
		OdometerReading:  parseOptionalInt(getOptionalField(record, columnMap, "odometer_reading")),
		ReceiptReference: getOptionalField(record, columnMap, "receipt_reference"),
	}
	return row, nil
}

// createColumnMap maps lowercased header names to their indices and
// checks the required columns are present.
func createColumnMap(headers []string, requiredColumns []string) (map[string]int, error) {
	columnMap := make(map[string]int)
	for i, header := range headers {
		columnMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, errors.Errorf("required column '%s' not found in CSV", col)
		}
	}
	return columnMap, nil
}

func getRequiredField(record []string, columnMap map[string]int, field string) (string, error) {
	if index, exists := columnMap[field]; exists && index < len(record) {
		value := strings.TrimSpace(record[index])
		if value == "" {
			return "", errors.Errorf("required field '%s' is empty", field)
		}
		return value, nil
	}
	return "", errors.Errorf("required field '%s' not found in record", field)
}

func getOptionalField(record []string, columnMap map[string]int, field string) string {
	if index, exists := columnMap[field]; exists && index < len(record) {
		return strings.TrimSpace(record[index])
	}
	return ""
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, "$", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	return ptr.Float64(parseFloat(s))
}

func parseOptionalInt(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return ptr.Int64(n)
}

// parseTime accepts RFC3339 timestamps and bare calendar dates, the
// two formats card processors actually send.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

func (s *Fuelmatch) createAndStageTempFile(filename string, reader io.Reader) (*os.File, error) {
	tempFile, err := s.createTempFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "error creating temporary file")
	}

	if _, err := io.Copy(tempFile, reader); err != nil {
		return nil, errors.Wrap(err, "error copying upload data")
	}
	if _, err := tempFile.Seek(0, 0); err != nil {
		return nil, errors.Wrap(err, "error seeking temporary file")
	}
	return tempFile, nil
}

func (s *Fuelmatch) createTempFile(originalFilename string) (*os.File, error) {
	tempDir := filepath.Join(os.TempDir(), "fuelmatch_uploads")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, errors.Wrap(err, "error creating temporary directory")
	}
	prefix := filepath.Base(originalFilename) + "_"
	return os.CreateTemp(tempDir, prefix)
}

func (s *Fuelmatch) cleanupTempFile(file *os.File) {
	if file == nil {
		return
	}
	filename := file.Name()
	file.Close()
	if err := os.Remove(filename); err != nil {
		logrus.Warnf("error removing temporary file %s: %v", filename, err)
	}
}

// detectFileTypeFromTempFile sniffs the first 512 bytes, then rewinds
// the file for the real parse.
func (s *Fuelmatch) detectFileTypeFromTempFile(tempFile *os.File, filename string) (string, error) {
	header := make([]byte, 512)
	if _, err := tempFile.Read(header); err != nil && err != io.EOF {
		return "", errors.Wrap(err, "error reading file header")
	}
	fileType, err := detectFileType(header, filename)
	if err != nil {
		return "", errors.Wrap(err, "error detecting file type")
	}
	if _, err := tempFile.Seek(0, 0); err != nil {
		return "", errors.Wrap(err, "error seeking temporary file")
	}
	return fileType, nil
}

func detectFileType(data []byte, filename string) (string, error) {
	if mimeType := detectByExtension(filename); mimeType != "" {
		return mimeType, nil
	}
	return detectByContent(data)
}

func detectByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	// the host mime table is not guaranteed to know csv
	switch ext {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	}
	return mime.TypeByExtension(ext)
}

func detectByContent(data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	switch mimeType {
	case "application/octet-stream", "text/plain", "text/plain; charset=utf-8":
		return analyzeTextContent(data)
	case "text/csv; charset=utf-8":
		return "text/csv", nil
	default:
		return mimeType, nil
	}
}

func analyzeTextContent(data []byte) (string, error) {
	data = bytes.TrimRight(data, "\x00")
	if looksLikeCSV(data) {
		return "text/csv", nil
	}
	if json.Valid(bytes.TrimSpace(data)) {
		return "application/json", nil
	}
	return "text/plain", nil
}

// looksLikeCSV requires at least two lines with a consistent field
// count. The sniff buffer may cut the last line short, so it is
// ignored when it has no trailing newline.
func looksLikeCSV(data []byte) bool {
	lines := bytes.Split(data, []byte("\n"))
	if len(lines) < 2 {
		return false
	}

	fields := bytes.Count(lines[0], []byte(",")) + 1
	for i, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		if i == len(lines)-2 {
			continue
		}
		if bytes.Count(line, []byte(","))+1 != fields {
			return false
		}
	}
	return fields > 1
}
