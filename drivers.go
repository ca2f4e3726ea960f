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
	"context"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/freightdesk/fuelmatch/internal/apierror"
	"github.com/freightdesk/fuelmatch/model"
)

// minimum levenshtein similarity for a fuzzy cardholder-name match.
const nameMatchRatio = 0.85

func (s *Fuelmatch) CreateDriver(ctx context.Context, driver model.Driver) (model.Driver, error) {
	if !driver.Branch.Valid() {
		return model.Driver{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid branch", nil)
	}
	if strings.TrimSpace(driver.Name) == "" {
		return model.Driver{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Driver name is required", nil)
	}
	driver.IsActive = true
	return s.datasource.CreateDriver(ctx, driver)
}

func (s *Fuelmatch) GetDriver(ctx context.Context, driverID string) (*model.Driver, error) {
	return s.datasource.GetDriverByID(ctx, driverID)
}

func (s *Fuelmatch) ListDrivers(ctx context.Context, limit, offset int) ([]model.Driver, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.datasource.GetAllDrivers(ctx, limit, offset)
}

func (s *Fuelmatch) ListDriversByBranch(ctx context.Context, branch model.Branch) ([]model.Driver, error) {
	if !branch.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid branch", nil)
	}
	return s.datasource.FindDriversByBranch(ctx, branch)
}

// DeactivateDriver retires a driver without touching their history.
// Existing matches stay queryable.
func (s *Fuelmatch) DeactivateDriver(ctx context.Context, driverID string) error {
	return s.datasource.DeactivateDriver(ctx, driverID)
}

func (s *Fuelmatch) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return s.datasource.GetTransaction(ctx, id)
}

func (s *Fuelmatch) GetFuelLog(ctx context.Context, id string) (*model.FuelLog, error) {
	return s.datasource.GetFuelLog(ctx, id)
}

// UpdateFuelLog persists an edited fuel log and re-matches the driver,
// since the edit may create or break matches. Matching failure does
// not roll back the edit.
func (s *Fuelmatch) UpdateFuelLog(ctx context.Context, fl *model.FuelLog) (*model.FuelLog, error) {
	if err := s.datasource.UpdateFuelLog(ctx, fl); err != nil {
		return nil, err
	}
	s.rematchAffectedDrivers(ctx, map[string]struct{}{fl.DriverID: {}})
	return fl, nil
}

// ResolveDriverByName maps a cardholder or trip-sheet name to a
// driver. Card processors emit names in surname-first order with
// inconsistent casing, so comparison happens on a token-sorted,
// lowercased form. Exact name and alias matches win; otherwise the
// closest levenshtein match above nameMatchRatio is taken.
func (s *Fuelmatch) ResolveDriverByName(ctx context.Context, name string) (*model.Driver, error) {
	target := normalizeName(name)
	if target == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Driver name is empty", nil)
	}

	var best *model.Driver
	var bestRatio float64

	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		drivers, err := s.datasource.GetAllDrivers(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for i := range drivers {
			driver := drivers[i]
			if !driver.IsActive {
				continue
			}
			if normalizeName(driver.Name) == target || normalizeName(driver.Alias) == target {
				return &driver, nil
			}
			ratio := levenshtein.RatioForStrings([]rune(target), []rune(normalizeName(driver.Name)), levenshtein.DefaultOptions)
			if ratio > bestRatio {
				bestRatio = ratio
				best = &driver
			}
		}

		if len(drivers) < pageSize {
			break
		}
	}

	if best != nil && bestRatio >= nameMatchRatio {
		return best, nil
	}
	return nil, apierror.NewAPIError(apierror.ErrNotFound, "No driver matches name "+name, nil)
}

// normalizeName lowercases, strips punctuation commas, and sorts name
// tokens so "SMITH, JOHN" and "John Smith" compare equal.
func normalizeName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, ",", " "))
	tokens := strings.Fields(name)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
