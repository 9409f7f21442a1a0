// internal/payload/builder_test.go
package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIncludesEveryModelFeature(t *testing.T) {
	b := NewBuilder()

	rec := b.Build("CHG000123", map[string]string{
		"serviceci": "SRV-APP-01",
	})

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var asMap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &asMap))

	expectedKeys := []string{
		"infrastructure_change_id",
		"submit_date",
		"scheduled_start_date",
		"scheduled_end_date",
		"f01_chr_serviceid",
		"serviceci",
		"ASORG",
		"ASGRP",
		"categorization_tier_1",
		"categorization_tier_2",
		"categorization_tier_3",
		"product_cat_tier_1",
		"product_cat_tier_2",
		"product_cat_tier_3",
		"change_request_status",
		"f01_chr_tipoafectacion",
		"change_duration_minutes",
	}
	for _, key := range expectedKeys {
		assert.Contains(t, asMap, key, "missing payload key %s", key)
	}

	// Empty inputs serialize as explicit nulls, never empty strings.
	assert.Equal(t, "null", string(asMap["submit_date"]))
	assert.Equal(t, "null", string(asMap["ASORG"]))
	assert.Equal(t, `"SRV-APP-01"`, string(asMap["serviceci"]))
}

func TestBuildStatusCoercion(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"numeric value", "6", 6},
		{"empty defaults to zero", "", 0},
		{"garbage defaults to zero", "scheduled", 0},
		{"negative preserved", "-1", -1},
	}

	b := NewBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.Build("CHG000123", map[string]string{
				"change_request_status": tt.raw,
			})
			assert.Equal(t, tt.expected, rec.ChangeRequestStatus)
		})
	}
}

func TestBuildDurationMinutes(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected *float64
	}{
		{
			name:     "thirty minute window",
			start:    "2025-03-10T10:00",
			end:      "2025-03-10T10:30",
			expected: ptr(30.0),
		},
		{
			name:     "with seconds",
			start:    "2025-03-10T10:00:00",
			end:      "2025-03-10T11:30:00",
			expected: ptr(90.0),
		},
		{
			name:     "inverted window clamps to zero",
			start:    "2025-03-10T12:00",
			end:      "2025-03-10T10:00",
			expected: ptr(0.0),
		},
		{
			name:     "missing end yields no duration",
			start:    "2025-03-10T10:00",
			end:      "",
			expected: nil,
		},
		{
			name:     "malformed start yields no duration",
			start:    "not-a-date",
			end:      "2025-03-10T10:00",
			expected: nil,
		},
	}

	b := NewBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.Build("CHG000123", map[string]string{
				"scheduled_start_date": tt.start,
				"scheduled_end_date":   tt.end,
			})

			if tt.expected == nil {
				assert.Nil(t, rec.DurationMinutes)
				return
			}
			require.NotNil(t, rec.DurationMinutes)
			assert.InDelta(t, *tt.expected, *rec.DurationMinutes, 0.0001)
		})
	}
}

func TestBuildDurationFailureStillYieldsFullRecord(t *testing.T) {
	b := NewBuilder()

	rec := b.Build("CHG000123", map[string]string{
		"scheduled_start_date": "garbage",
		"scheduled_end_date":   "2025-03-10T10:00",
		"serviceci":            "SRV-APP-01",
	})

	assert.Nil(t, rec.DurationMinutes)
	require.NotNil(t, rec.ServiceCI)
	assert.Equal(t, "SRV-APP-01", *rec.ServiceCI)
	require.NotNil(t, rec.ScheduledStartDate)
	assert.Equal(t, "garbage", *rec.ScheduledStartDate)
}

func ptr(f float64) *float64 {
	return &f
}
