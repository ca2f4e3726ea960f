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
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID prefixed with a module name,
// e.g. "drv_4f9c...". Used as the surrogate ID for every stored record.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// DayOf truncates a timestamp to calendar-day granularity in UTC.
// Fuel-card and expense-card stamps are frequently offset by time zone
// or settlement delay, so matching never considers time of day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Window is a date range (typically a fiscal quarter) scoping which
// transactions and fuel logs are compared together. Both bounds are
// inclusive at day granularity.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var ErrInvalidWindow = errors.New("window end precedes window start")

func (w Window) Validate() error {
	if DayOf(w.End).Before(DayOf(w.Start)) {
		return ErrInvalidWindow
	}
	return nil
}

// IsZero reports whether the window was never set; a zero window means
// "all records for the driver".
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether the given date falls inside the window at
// day granularity. A zero window contains everything.
func (w Window) Contains(t time.Time) bool {
	if w.IsZero() {
		return true
	}
	day := DayOf(t)
	return !day.Before(DayOf(w.Start)) && !day.After(DayOf(w.End))
}

// QuarterWindow returns the window covering a calendar quarter, the
// shape the quarter-settings screens feed into matching runs.
func QuarterWindow(year, quarter int) (Window, error) {
	if quarter < 1 || quarter > 4 {
		return Window{}, fmt.Errorf("invalid quarter: %d", quarter)
	}
	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return Window{Start: start, End: end}, nil
}
