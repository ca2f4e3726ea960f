package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("drv")
	assert.True(t, strings.HasPrefix(id, "drv_"))
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("drv"))
}

func TestDayOf(t *testing.T) {
	stamp := time.Date(2024, 7, 3, 23, 45, 12, 999, time.FixedZone("CST", -6*3600))
	day := DayOf(stamp)
	assert.Equal(t, 2024, day.Year())
	assert.Equal(t, time.July, day.Month())
	assert.Equal(t, 3, day.Day())
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, time.UTC, day.Location())
}

func TestWindowValidate(t *testing.T) {
	valid := Window{
		Start: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, valid.Validate())

	inverted := Window{Start: valid.End, End: valid.Start}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidWindow)

	sameDay := Window{
		Start: time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 7, 1, 2, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, sameDay.Validate(), "same calendar day is a valid window")
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(time.Date(2024, 7, 1, 23, 59, 0, 0, time.UTC)), "start day is inclusive")
	assert.True(t, w.Contains(time.Date(2024, 9, 30, 0, 0, 1, 0, time.UTC)), "end day is inclusive")
	assert.False(t, w.Contains(time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))

	assert.True(t, Window{}.Contains(time.Now()), "zero window contains everything")
}

func TestQuarterWindow(t *testing.T) {
	q3, err := QuarterWindow(2024, 3)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), q3.Start)
	assert.Equal(t, time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), q3.End)

	q1, err := QuarterWindow(2024, 1)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), q1.End)

	_, err = QuarterWindow(2024, 5)
	assert.Error(t, err)
}

func TestMatchTypeValid(t *testing.T) {
	assert.True(t, MatchDateCost.Valid())
	assert.True(t, MatchDateQuantity.Valid())
	assert.True(t, MatchDateSupplierState.Valid())
	assert.False(t, MatchType("date_vibes").Valid())
}

func TestBranchValid(t *testing.T) {
	assert.True(t, BranchMidwest.Valid())
	assert.False(t, Branch("northeast").Valid())
}

func TestActiveMatchSetMarshalJSON(t *testing.T) {
	set := &ActiveMatchSet{
		Matches: []*Match{
			{MatchID: "match_1", TransactionID: "txn_b", FuelLogID: "flog_2", MatchType: MatchDateCost, Confidence: 0.95},
			{MatchID: "match_2", TransactionID: "txn_a", FuelLogID: "flog_1", MatchType: MatchDateQuantity, Confidence: 0.85},
		},
		MatchedTransactionIDs: map[string]struct{}{"txn_b": {}, "txn_a": {}},
		MatchedFuelLogIDs:     map[string]struct{}{"flog_2": {}, "flog_1": {}},
	}

	raw, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded struct {
		Matches               []Match  `json:"matches"`
		MatchedTransactionIDs []string `json:"matched_transaction_ids"`
		MatchedFuelLogIDs     []string `json:"matched_fuel_log_ids"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Len(t, decoded.Matches, 2)
	assert.Equal(t, []string{"txn_a", "txn_b"}, decoded.MatchedTransactionIDs)
	assert.Equal(t, []string{"flog_1", "flog_2"}, decoded.MatchedFuelLogIDs)
}

func TestActiveMatchSetMarshalJSONEmpty(t *testing.T) {
	set := &ActiveMatchSet{
		MatchedTransactionIDs: map[string]struct{}{},
		MatchedFuelLogIDs:     map[string]struct{}{},
	}

	raw, err := json.Marshal(set)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"matches":[]`)
	assert.Contains(t, body, `"matched_transaction_ids":[]`)
	assert.Contains(t, body, `"matched_fuel_log_ids":[]`)
}
