package domain

import (
	"encoding/json"
	"fmt"
)

// District is a feature whose properties were replaced from the area table.
type District struct {
	Key        string
	Record     AreaRecord
	Properties *Object
}

// MergeResult summarizes a merge.
type MergeResult struct {
	Total     int
	Updated   int
	Districts []District
}

// MergeAreas replaces the properties of every feature whose "nazwa" matches
// a table key with that record plus the feature's original id and nazwa.
// Features without a match are left untouched.
func MergeAreas(doc *Document, table AreaTable) (MergeResult, error) {
	features, err := doc.Features()
	if err != nil {
		return MergeResult{}, err
	}

	result := MergeResult{Total: len(features)}
	for i, raw := range features {
		f, err := DecodeFeature(i, raw)
		if err != nil {
			return MergeResult{}, err
		}
		if f.Properties == nil {
			continue
		}
		key := NormalizeFeatureName(f.Name())
		rec, ok := table[key]
		if !ok {
			continue
		}

		props, err := replaceProperties(f.Properties, rec)
		if err != nil {
			return MergeResult{}, fmt.Errorf("feature %d: %w", i, err)
		}
		if err := f.Object.SetValue(keyProperties, props); err != nil {
			return MergeResult{}, fmt.Errorf("feature %d: %w", i, err)
		}
		encoded, err := marshalJSON(&f.Object)
		if err != nil {
			return MergeResult{}, fmt.Errorf("feature %d: %w", i, err)
		}
		features[i] = encoded

		result.Updated++
		result.Districts = append(result.Districts, District{Key: key, Record: rec, Properties: props})
	}

	if result.Updated == 0 {
		return result, nil
	}
	if err := doc.setFeatures(features); err != nil {
		return MergeResult{}, err
	}
	return result, nil
}

// replaceProperties builds the new properties of a matched feature. Members
// already present keep their position; the rest follow in record order.
func replaceProperties(old *Object, rec AreaRecord) (*Object, error) {
	id, ok := old.Get(PropID)
	if !ok {
		id = jsonNull
	}
	name, _ := old.Get(PropName)

	fields, err := DistrictProperties(rec, id, name)
	if err != nil {
		return nil, err
	}

	props := &Object{}
	for _, k := range old.keys {
		if v, ok := fields.Get(k); ok {
			props.Set(k, v)
		}
	}
	for _, k := range fields.keys {
		props.Set(k, fields.values[k])
	}
	return props, nil
}

// DistrictProperties returns the properties a feature matching rec carries,
// in record field order, with the feature's raw id and nazwa appended.
func DistrictProperties(rec AreaRecord, id, name json.RawMessage) (*Object, error) {
	values := []struct {
		key string
		v   any
	}{
		{PropHeadquarters, rec.Headquarters},
		{PropPlates, rec.Plates},
		{PropProvince, rec.Province},
		{PropAreaKm2, Number(rec.AreaKm2)},
		{PropAreaHa, Number(rec.AreaHa)},
		{PropPopulation, Number(rec.Population)},
		{PropDensity, Number(rec.Density)},
	}

	props := &Object{}
	for _, v := range values {
		if err := props.SetValue(v.key, v.v); err != nil {
			return nil, err
		}
	}
	props.Set(PropID, id)
	props.Set(PropName, name)
	return props, nil
}
