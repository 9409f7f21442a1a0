// internal/payload/builder.go

// Package payload normalizes raw form input into the fixed-shape record the
// classification backend expects.
package payload

import (
	"strconv"
	"time"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
)

// dateLayout matches datetime-local form values, seconds optional.
const (
	dateLayout     = "2006-01-02T15:04"
	dateLayoutSecs = "2006-01-02T15:04:05"
	minuteInMillis = 60000.0
)

// Builder turns raw field values into a ChangeRecord. Stateless; the zero
// value is ready to use.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles a ChangeRecord from raw string inputs keyed by wire field
// name. Every model feature ends up either a meaningful scalar or an
// explicit null. The duration is derived locally from the scheduled window;
// if either bound fails to parse the duration is simply absent, never an
// error surfaced to the caller.
func (b *Builder) Build(changeID string, raw map[string]string) models.ChangeRecord {
	rec := models.ChangeRecord{
		InfrastructureChangeID: changeID,
		SubmitDate:             optional(raw["submit_date"]),
		ScheduledStartDate:     optional(raw["scheduled_start_date"]),
		ScheduledEndDate:       optional(raw["scheduled_end_date"]),
		ServiceID:              optional(raw["f01_chr_serviceid"]),
		ServiceCI:              optional(raw["serviceci"]),
		AssignedOrg:            optional(raw["ASORG"]),
		AssignedGroup:          optional(raw["ASGRP"]),
		CategorizationTier1:    optional(raw["categorization_tier_1"]),
		CategorizationTier2:    optional(raw["categorization_tier_2"]),
		CategorizationTier3:    optional(raw["categorization_tier_3"]),
		ProductCatTier1:        optional(raw["product_cat_tier_1"]),
		ProductCatTier2:        optional(raw["product_cat_tier_2"]),
		ProductCatTier3:        optional(raw["product_cat_tier_3"]),
		ChangeRequestStatus:    statusCode(raw["change_request_status"]),
		AffectationType:        optional(raw["f01_chr_tipoafectacion"]),
	}

	rec.DurationMinutes = durationMinutes(raw["scheduled_start_date"], raw["scheduled_end_date"])

	return rec
}

// optional maps empty strings to nil so they serialize as JSON null.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// statusCode coerces the status field to an integer, defaulting to 0 on
// empty or malformed input.
func statusCode(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// durationMinutes computes the scheduled window length in minutes, clamped
// at zero for inverted windows. Unparseable bounds yield nil.
func durationMinutes(start, end string) *float64 {
	startTime, ok := parseLocal(start)
	if !ok {
		return nil
	}
	endTime, ok := parseLocal(end)
	if !ok {
		return nil
	}

	minutes := float64(endTime.Sub(startTime).Milliseconds()) / minuteInMillis
	if minutes < 0 {
		minutes = 0
	}
	return &minutes
}

func parseLocal(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayoutSecs, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}
