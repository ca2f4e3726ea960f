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

func (d Datasource) CreateDriver(ctx context.Context, drv model.Driver) (model.Driver, error) {
	ctx, span := otel.Tracer("Driver").Start(ctx, "Saving driver to db")
	defer span.End()

	drv.DriverID = model.GenerateUUIDWithSuffix("drv")
	drv.CreatedAt = time.Now()
	drv.IsActive = true

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO fuelmatch.drivers (driver_id, name, alias, branch, card_last_four, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		drv.DriverID, drv.Name, drv.Alias, drv.Branch, drv.CardLastFour, drv.IsActive, drv.CreatedAt,
	)
	if err != nil {
		return model.Driver{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create driver", err)
	}

	return drv, nil
}

func (d Datasource) GetDriverByID(ctx context.Context, id string) (*model.Driver, error) {
	ctx, span := otel.Tracer("Driver").Start(ctx, "Fetching driver from db")
	defer span.End()

	drv := &model.Driver{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, driver_id, name, alias, branch, card_last_four, is_active, created_at
		FROM fuelmatch.drivers
		WHERE driver_id = $1
	`, id).Scan(&drv.ID, &drv.DriverID, &drv.Name, &drv.Alias, &drv.Branch, &drv.CardLastFour, &drv.IsActive, &drv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Driver with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve driver", err)
	}

	return drv, nil
}

func (d Datasource) GetAllDrivers(ctx context.Context, limit, offset int) ([]model.Driver, error) {
	ctx, span := otel.Tracer("Driver").Start(ctx, "Fetching all drivers")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, driver_id, name, alias, branch, card_last_four, is_active, created_at
		FROM fuelmatch.drivers
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve drivers", err)
	}
	defer rows.Close()

	return scanDrivers(rows)
}

func (d Datasource) FindDriversByBranch(ctx context.Context, branch model.Branch) ([]model.Driver, error) {
	ctx, span := otel.Tracer("Driver").Start(ctx, "Fetching drivers by branch")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, driver_id, name, alias, branch, card_last_four, is_active, created_at
		FROM fuelmatch.drivers
		WHERE branch = $1
		ORDER BY name
	`, branch)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve drivers by branch", err)
	}
	defer rows.Close()

	return scanDrivers(rows)
}

// DeactivateDriver marks a driver inactive. Drivers are never deleted;
// transactions and fuel logs keep referencing them.
func (d Datasource) DeactivateDriver(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("Driver").Start(ctx, "Deactivating driver")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE fuelmatch.drivers SET is_active = FALSE WHERE driver_id = $1
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to deactivate driver", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to deactivate driver", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Driver with ID '%s' not found", id), nil)
	}

	return nil
}

func scanDrivers(rows *sql.Rows) ([]model.Driver, error) {
	var drivers []model.Driver
	for rows.Next() {
		drv := model.Driver{}
		err := rows.Scan(&drv.ID, &drv.DriverID, &drv.Name, &drv.Alias, &drv.Branch, &drv.CardLastFour, &drv.IsActive, &drv.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan driver", err)
		}
		drivers = append(drivers, drv)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating drivers", err)
	}
	return drivers, nil
}
