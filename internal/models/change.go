// internal/models/change.go
package models

// ModelFeatures is the fixed feature set the classification backend expects.
// Every name listed here must appear as a key in the outgoing payload, with
// either a meaningful scalar or an explicit null — never a missing key and
// never an empty string.
var ModelFeatures = []string{
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
}

// ChangeRecord is the normalized payload describing a pending infrastructure
// change, submitted for classification. Pointer fields serialize as explicit
// JSON nulls when unset.
type ChangeRecord struct {
	InfrastructureChangeID string   `json:"infrastructure_change_id"`
	SubmitDate             *string  `json:"submit_date"`
	ScheduledStartDate     *string  `json:"scheduled_start_date"`
	ScheduledEndDate       *string  `json:"scheduled_end_date"`
	ServiceID              *string  `json:"f01_chr_serviceid"`
	ServiceCI              *string  `json:"serviceci"`
	AssignedOrg            *string  `json:"ASORG"`
	AssignedGroup          *string  `json:"ASGRP"`
	CategorizationTier1    *string  `json:"categorization_tier_1"`
	CategorizationTier2    *string  `json:"categorization_tier_2"`
	CategorizationTier3    *string  `json:"categorization_tier_3"`
	ProductCatTier1        *string  `json:"product_cat_tier_1"`
	ProductCatTier2        *string  `json:"product_cat_tier_2"`
	ProductCatTier3        *string  `json:"product_cat_tier_3"`
	ChangeRequestStatus    int      `json:"change_request_status"`
	AffectationType        *string  `json:"f01_chr_tipoafectacion"`
	DurationMinutes        *float64 `json:"change_duration_minutes"`
}

// FieldValue pairs a wire field name with its submitted value. Value is nil
// for fields the operator left empty.
type FieldValue struct {
	Name  string
	Value any
}

// Fields returns the record's fields in wire order, identifier first. Nil
// pointers are reported as nil values so callers can filter them out.
func (r ChangeRecord) Fields() []FieldValue {
	strVal := func(p *string) any {
		if p == nil {
			return nil
		}
		return *p
	}

	fields := []FieldValue{
		{Name: "infrastructure_change_id", Value: r.InfrastructureChangeID},
		{Name: "submit_date", Value: strVal(r.SubmitDate)},
		{Name: "scheduled_start_date", Value: strVal(r.ScheduledStartDate)},
		{Name: "scheduled_end_date", Value: strVal(r.ScheduledEndDate)},
		{Name: "f01_chr_serviceid", Value: strVal(r.ServiceID)},
		{Name: "serviceci", Value: strVal(r.ServiceCI)},
		{Name: "ASORG", Value: strVal(r.AssignedOrg)},
		{Name: "ASGRP", Value: strVal(r.AssignedGroup)},
		{Name: "categorization_tier_1", Value: strVal(r.CategorizationTier1)},
		{Name: "categorization_tier_2", Value: strVal(r.CategorizationTier2)},
		{Name: "categorization_tier_3", Value: strVal(r.CategorizationTier3)},
		{Name: "product_cat_tier_1", Value: strVal(r.ProductCatTier1)},
		{Name: "product_cat_tier_2", Value: strVal(r.ProductCatTier2)},
		{Name: "product_cat_tier_3", Value: strVal(r.ProductCatTier3)},
		{Name: "change_request_status", Value: r.ChangeRequestStatus},
		{Name: "f01_chr_tipoafectacion", Value: strVal(r.AffectationType)},
	}

	if r.DurationMinutes != nil {
		fields = append(fields, FieldValue{Name: "change_duration_minutes", Value: *r.DurationMinutes})
	} else {
		fields = append(fields, FieldValue{Name: "change_duration_minutes", Value: nil})
	}
	return fields
}
