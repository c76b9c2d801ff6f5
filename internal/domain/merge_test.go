package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"nazwa": "Powiat Warszawski", "id": 7, "kod": "1432", "area_km2": 1},
      "geometry": {"type": "Point", "coordinates": [21.0, 52.2]}
    },
    {
      "type": "Feature",
      "properties": {"kod":"0201","nazwa":"powiat łowicki","id":"x-9","uwagi":null},
      "geometry": null
    }
  ]
}`

func testTable() AreaTable {
	table, _, err := ParseAreaTable(strings.NewReader(testRowWarszawski + "\n"))
	if err != nil {
		panic(err)
	}
	return table
}

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(s))
	require.NoError(t, err)
	return doc
}

func featureProps(t *testing.T, doc *Document, i int) *Object {
	t.Helper()
	features, err := doc.Features()
	require.NoError(t, err)
	f, err := DecodeFeature(i, features[i])
	require.NoError(t, err)
	require.NotNil(t, f.Properties)
	return f.Properties
}

func TestMergeAreas_ReplacesMatchedProperties(t *testing.T) {
	doc := mustParse(t, testCollection)

	result, err := MergeAreas(doc, testTable())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Districts, 1)
	assert.Equal(t, testKeyWarszawski, result.Districts[0].Key)
	assert.Equal(t, "Warszawa", result.Districts[0].Record.Headquarters)

	props := featureProps(t, doc, 0)
	assert.Equal(t, []string{
		PropName, PropID, PropAreaKm2,
		PropHeadquarters, PropPlates, PropProvince, PropAreaHa, PropPopulation, PropDensity,
	}, props.Keys())

	out, err := marshalJSON(props)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nazwa": "Powiat Warszawski",
		"id": 7,
		"area_km2": 1234.5,
		"headquarters": "Warszawa",
		"plates": "WA",
		"province": "mazowieckie",
		"area_ha": 123450.0,
		"population": 50000.0,
		"density": 40.5
	}`, string(out))
	assert.Contains(t, string(out), `"population":50000.0`)
}

func TestMergeAreas_UnmatchedFeatureUntouched(t *testing.T) {
	doc := mustParse(t, testCollection)
	before, err := doc.Features()
	require.NoError(t, err)

	_, err = MergeAreas(doc, testTable())
	require.NoError(t, err)

	after, err := doc.Features()
	require.NoError(t, err)
	assert.Equal(t, compact(t, before[1]), compact(t, after[1]))
}

func TestMergeAreas_MissingIDBecomesNull(t *testing.T) {
	doc := mustParse(t, `{"features":[{"properties":{"nazwa":" powiat WARSZAWSKI ","extra":true}}]}`)

	result, err := MergeAreas(doc, testTable())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	props := featureProps(t, doc, 0)
	id, ok := props.Get(PropID)
	require.True(t, ok)
	assert.Equal(t, "null", string(id))
	assert.Equal(t, " powiat WARSZAWSKI ", props.GetString(PropName))
	_, hasExtra := props.Get("extra")
	assert.False(t, hasExtra)
	assert.Equal(t, PropName, props.Keys()[0])
	assert.Equal(t, PropID, props.Keys()[props.Len()-1])
}

func TestMergeAreas_SameDistrictTwice(t *testing.T) {
	doc := mustParse(t, `{"features":[
		{"properties":{"nazwa":"powiat warszawski","id":1}},
		{"properties":{"nazwa":"Powiat Warszawski","id":2}}
	]}`)

	result, err := MergeAreas(doc, testTable())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)

	assert.Equal(t, "1", string(mustGet(t, featureProps(t, doc, 0), PropID)))
	assert.Equal(t, "2", string(mustGet(t, featureProps(t, doc, 1), PropID)))
	assert.Equal(t, "powiat warszawski", featureProps(t, doc, 0).GetString(PropName))
}

func compact(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.Compact(&buf, raw))
	return buf.String()
}

func mustGet(t *testing.T, o *Object, key string) json.RawMessage {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok, key)
	return v
}

func TestMergeAreas_NoMatchCases(t *testing.T) {
	cases := map[string]string{
		"no features key":   `{"type":"FeatureCollection"}`,
		"null features":     `{"features":null}`,
		"empty features":    `{"features":[]}`,
		"missing props":     `{"features":[{"type":"Feature"}]}`,
		"null props":        `{"features":[{"properties":null}]}`,
		"missing nazwa":     `{"features":[{"properties":{"id":1}}]}`,
		"non-string nazwa":  `{"features":[{"properties":{"nazwa":12,"id":1}}]}`,
		"unprefixed nazwa":  `{"features":[{"properties":{"nazwa":"Warszawski","id":1}}]}`,
		"unknown district":  `{"features":[{"properties":{"nazwa":"powiat pucki","id":1}}]}`,
		"empty nazwa match": `{"features":[{"properties":{"nazwa":"","id":1}}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, in)
			before, err := doc.Encode()
			require.NoError(t, err)

			result, err := MergeAreas(doc, testTable())
			require.NoError(t, err)
			assert.Zero(t, result.Updated)

			after, err := doc.Encode()
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestMergeAreas_Errors(t *testing.T) {
	cases := map[string]string{
		"features not array":    `{"features":{"a":1}}`,
		"feature not object":    `{"features":[1]}`,
		"properties not object": `{"features":[{"properties":[1]}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := MergeAreas(mustParse(t, in), testTable())
			assert.Error(t, err)
		})
	}
}

func TestMergeAreas_Idempotent(t *testing.T) {
	table := testTable()

	doc := mustParse(t, testCollection)
	first, err := MergeAreas(doc, table)
	require.NoError(t, err)
	once, err := doc.Encode()
	require.NoError(t, err)

	doc = mustParse(t, string(once))
	second, err := MergeAreas(doc, table)
	require.NoError(t, err)
	twice, err := doc.Encode()
	require.NoError(t, err)

	assert.Equal(t, first.Updated, second.Updated)
	if diff := cmp.Diff(string(once), string(twice)); diff != "" {
		t.Errorf("second run changed the document (-first +second):\n%s", diff)
	}
}

func TestDocument_Encode(t *testing.T) {
	doc := mustParse(t, `{"b":{"nazwa":"powiat żniński","url":"a&b<c>"},"a":[],"e":{},"n":1.50}`)

	out, err := doc.Encode()
	require.NoError(t, err)
	want := "{\n" +
		"  \"b\": {\n" +
		"    \"nazwa\": \"powiat żniński\",\n" +
		"    \"url\": \"a&b<c>\"\n" +
		"  },\n" +
		"  \"a\": [],\n" +
		"  \"e\": {},\n" +
		"  \"n\": 1.50\n" +
		"}"
	assert.Equal(t, want, string(out))
}

func TestMergeAreas_EscapedNonASCIIWrittenAsUTF8(t *testing.T) {
	table, _, err := ParseAreaTable(strings.NewReader("Łowicki\tŁowicz\tELC\tłódzkie\t987,00\t78 000\t79\n"))
	require.NoError(t, err)
	doc := mustParse(t, `{"name":"Wojew\u00f3dztwa","features":[
		{"properties":{"nazwa":"powiat \u0142owicki","id":2}},
		{"properties":{"nazwa":"powiat \u017carski","id":3}}
	]}`)

	result, err := MergeAreas(doc, table)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	out, err := doc.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(out), `\u`)
	assert.Contains(t, string(out), `"name": "Województwa"`)
	assert.Contains(t, string(out), `"nazwa": "powiat łowicki"`)
	assert.Contains(t, string(out), `"province": "łódzkie"`)
	assert.Contains(t, string(out), `"nazwa": "powiat żarski"`)

	value, err := marshalJSON(result.Districts[0].Properties)
	require.NoError(t, err)
	assert.Contains(t, string(value), `"nazwa":"powiat łowicki"`)
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := ParseDocument([]byte(`[1,2]`))
	assert.Error(t, err)
	_, err = ParseDocument([]byte(`{"features":`))
	assert.Error(t, err)
}
