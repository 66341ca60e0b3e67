// Package specs declares which specification keys a listing must carry
// for a given category. The same schema is served to clients with the
// category so forms and the server agree.
package specs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/pkg/apperror"
)

const (
	KindText   = "text"
	KindNumber = "number"
	KindYear   = "year"
)

type Field struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}

// Schema is keyed by category slug.
type Schema map[string][]Field

var Default = Schema{
	"vehicles": {
		{Key: "brand", Label: "Brand", Kind: KindText, Required: true},
		{Key: "model", Label: "Model", Kind: KindText, Required: true},
		{Key: "year", Label: "Year", Kind: KindYear, Required: true},
		{Key: "mileage", Label: "Mileage", Kind: KindNumber},
		{Key: "fuelType", Label: "Fuel type", Kind: KindText},
	},
	"properties": {
		{Key: "bedrooms", Label: "Bedrooms", Kind: KindNumber, Required: true},
		{Key: "area", Label: "Area (sq ft)", Kind: KindNumber, Required: true},
		{Key: "bathrooms", Label: "Bathrooms", Kind: KindNumber},
	},
	"electronics": {
		{Key: "brand", Label: "Brand", Kind: KindText},
		{Key: "model", Label: "Model", Kind: KindText},
	},
}

// Fields returns the fields for the first slug that has a schema, so a
// subcategory without its own entry inherits its parent's.
func (s Schema) Fields(slugs ...string) []Field {
	for _, slug := range slugs {
		if f, ok := s[slug]; ok {
			return f
		}
	}
	return []Field{}
}

// Validate checks values against fields and returns a ValidationError keyed
// as specifications.<key>.
func Validate(fields []Field, values entity.Specifications) error {
	verr := &apperror.ValidationError{}
	for _, f := range fields {
		raw := strings.TrimSpace(values[f.Key])
		if raw == "" {
			if f.Required {
				verr.Add("specifications."+f.Key, f.Label+" is required")
			}
			continue
		}

		switch f.Kind {
		case KindNumber:
			if v, err := strconv.ParseFloat(raw, 64); err != nil || v < 0 {
				verr.Add("specifications."+f.Key, f.Label+" must be a non-negative number")
			}
		case KindYear:
			year, err := strconv.Atoi(raw)
			if err != nil || year < 1900 || year > time.Now().Year()+1 {
				verr.Add("specifications."+f.Key, fmt.Sprintf("%s must be between 1900 and %d", f.Label, time.Now().Year()+1))
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
