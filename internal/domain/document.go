package domain

import (
	"encoding/json"
	"fmt"
)

// Property names written into a matched feature, in output order.
const (
	PropHeadquarters = "headquarters"
	PropPlates       = "plates"
	PropProvince     = "province"
	PropAreaKm2      = "area_km2"
	PropAreaHa       = "area_ha"
	PropPopulation   = "population"
	PropDensity      = "density"
	PropID           = "id"
	PropName         = "nazwa"
)

const (
	keyFeatures   = "features"
	keyProperties = "properties"
)

// Document is a feature collection read from JSON.
type Document struct {
	root Object
}

// ParseDocument decodes a feature collection. The top level must be a
// JSON object; everything else is kept as raw JSON.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc.root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Encode returns the document as UTF-8 JSON indented by two spaces, with
// non-ASCII and HTML characters written literally.
func (d *Document) Encode() ([]byte, error) {
	out, err := encodeJSON(&d.root, "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

// Features returns the raw features of the document. A missing or null
// "features" member yields none.
func (d *Document) Features() ([]json.RawMessage, error) {
	raw, ok := d.root.Get(keyFeatures)
	if !ok || isNull(raw) {
		return nil, nil
	}
	var features []json.RawMessage
	if err := json.Unmarshal(raw, &features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return features, nil
}

func (d *Document) setFeatures(features []json.RawMessage) error {
	return d.root.SetValue(keyFeatures, features)
}

// Feature is a decoded entry of the features list.
type Feature struct {
	Index      int
	Object     Object
	Properties *Object // nil when the feature has no properties object
}

// DecodeFeature decodes the i-th raw feature and its properties.
func DecodeFeature(i int, raw json.RawMessage) (Feature, error) {
	f := Feature{Index: i}
	if err := json.Unmarshal(raw, &f.Object); err != nil {
		return Feature{}, fmt.Errorf("feature %d: %w", i, err)
	}
	praw, ok := f.Object.Get(keyProperties)
	if !ok || isNull(praw) {
		return f, nil
	}
	var props Object
	if err := json.Unmarshal(praw, &props); err != nil {
		return Feature{}, fmt.Errorf("feature %d properties: %w", i, err)
	}
	f.Properties = &props
	return f, nil
}

// Name returns the raw "nazwa" property, or "" when absent or not a string.
func (f Feature) Name() string {
	if f.Properties == nil {
		return ""
	}
	return f.Properties.GetString(PropName)
}
