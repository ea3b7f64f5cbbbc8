// Package catalog resolves the field catalog into the flat lists the
// intake form consumes. Placements can be global or scoped to a
// country/visa type; overlaps are resolved by a first-wins policy over
// the sort order, so the earliest placement of a key is the one that
// renders.
package catalog

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/intake"
	"github.com/atlasgate/visaport/internal/models"
)

// Store reads the field catalog and country tables.
type Store struct {
	db *gorm.DB
}

// NewStore creates a catalog store over the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FormFields resolves the simple fields for an intake context. Fetch
// failures degrade to an empty list so the portal can render a warning
// instead of an error page.
func (s *Store) FormFields(ctx context.Context, country, visaType string) []intake.FormField {
	var rows []models.FieldAssignment
	err := s.db.WithContext(ctx).
		Preload("Definition").
		Where("country IS NULL OR country = ?", country).
		Where("visa_type IS NULL OR visa_type = ?", visaType).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		log.Printf("Warning: form field fetch failed: %v", err)
		// Empty, not nil: the schema endpoint must always serialize a
		// list for the warning state.
		return []intake.FormField{}
	}
	return ProjectFields(rows)
}

// SmartAssignments resolves the smart-field placements for an intake
// context, with the template's labels denormalized in. Same
// degrade-to-empty behaviour as FormFields.
func (s *Store) SmartAssignments(ctx context.Context, country, visaType string) []intake.SmartAssignment {
	var rows []models.SmartFieldAssignment
	err := s.db.WithContext(ctx).
		Preload("Template").
		Where("country IS NULL OR country = ?", country).
		Where("visa_type IS NULL OR visa_type = ?", visaType).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		log.Printf("Warning: smart assignment fetch failed: %v", err)
		return []intake.SmartAssignment{}
	}
	return ProjectSmart(rows)
}

// ProjectFields flattens assignment rows into form fields. Rows are
// expected pre-sorted by sort order; duplicate field keys keep the
// first occurrence. Rows whose definition is missing are skipped.
func ProjectFields(rows []models.FieldAssignment) []intake.FormField {
	seen := map[string]bool{}
	out := make([]intake.FormField, 0, len(rows))
	for _, row := range rows {
		def := row.Definition
		if def == nil || seen[def.FieldKey] {
			continue
		}
		seen[def.FieldKey] = true
		out = append(out, intake.FormField{
			ID:            row.ID,
			FieldKey:      def.FieldKey,
			FieldLabel:    def.FieldLabel,
			FieldLabelTR:  def.FieldLabelTR,
			FieldType:     def.FieldType,
			Placeholder:   def.Placeholder,
			PlaceholderTR: def.PlaceholderTR,
			Options:       intake.SplitOptions(def.Options),
			OptionsTR:     intake.SplitOptions(def.OptionsTR),
			IsRequired:    row.IsRequired,
			IsStandard:    def.IsStandard,
			MaxChars:      row.MaxChars,
			SortOrder:     row.SortOrder,
			Section:       row.Section,
		})
	}
	return out
}

// ProjectSmart flattens smart assignment rows, first occurrence of
// each template key wins.
func ProjectSmart(rows []models.SmartFieldAssignment) []intake.SmartAssignment {
	seen := map[string]bool{}
	out := make([]intake.SmartAssignment, 0, len(rows))
	for _, row := range rows {
		tpl := row.Template
		if tpl == nil || seen[tpl.TemplateKey] {
			continue
		}
		seen[tpl.TemplateKey] = true
		out = append(out, intake.SmartAssignment{
			ID:            row.ID,
			TemplateKey:   tpl.TemplateKey,
			Label:         tpl.Label,
			LabelTR:       tpl.LabelTR,
			Description:   tpl.Description,
			DescriptionTR: tpl.DescriptionTR,
			IsRequired:    row.IsRequired,
			SortOrder:     row.SortOrder,
			Section:       row.Section,
		})
	}
	return out
}

// CountryFees looks up a country's fee schedule by name. A missing
// country surfaces as an error; the caller falls back to zero fees.
func (s *Store) CountryFees(ctx context.Context, country string) (intake.Fees, error) {
	var row models.Country
	err := s.db.WithContext(ctx).Where("name = ?", country).First(&row).Error
	if err != nil {
		return intake.Fees{}, err
	}
	currency := row.Currency
	if currency == "" {
		currency = intake.DefaultCurrency
	}
	return intake.Fees{Service: row.ServiceFee, Consulate: row.ConsulateFee, Currency: currency}, nil
}

// ActiveCountries lists the countries offered on the portal.
func (s *Store) ActiveCountries(ctx context.Context) ([]models.Country, error) {
	var rows []models.Country
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// ActiveVisaTypes lists the selectable visa categories.
func (s *Store) ActiveVisaTypes(ctx context.Context) ([]models.VisaType, error) {
	var rows []models.VisaType
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	return rows, err
}
