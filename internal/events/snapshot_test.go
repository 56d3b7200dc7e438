package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarket(t *testing.T) {
	doc := `{"id":128666762,"timestamp":"2025-06-01T12:00:00Z","commodities":[` +
		`{"id":128049154,"name":"Gold","categoryname":"Metals","meanPrice":47610,` +
		`"sellPrice":47244,"demand":0,"demandBracket":"","buyPrice":46262,"stock":172,"stockBracket":2}]}`
	snap, err := ParseMarket([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, int64(128666762), snap.ID)
	require.NotNil(t, snap.Commodities)
	require.Len(t, *snap.Commodities, 1)

	c := (*snap.Commodities)[0]
	assert.Equal(t, int64(128049154), c.ID)
	assert.Equal(t, "Metals", c.CategoryName)
	assert.Equal(t, float64(47610), c.MeanPrice)
	// Brackets sometimes arrive as strings; the value stays loose until the
	// core coerces it.
	assert.Equal(t, "", c.DemandBracket)
}

func TestParseMarketWithoutCommodityList(t *testing.T) {
	snap, err := ParseMarket([]byte(`{"id":128666762,"timestamp":"2025-06-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Nil(t, snap.Commodities)
}

func TestParseShipyard(t *testing.T) {
	doc := `{"id":128666762,"timestamp":"2025-06-01T12:00:00Z","ships":{` +
		`"shipyard_list":{"SideWinder":{"id":128049249,"name":"SideWinder","basevalue":32000}},` +
		`"unavailable_list":[{"id":128049255,"name":"Python","basevalue":56978180}]}}`
	snap, err := ParseShipyard([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, snap.Ships)
	require.Len(t, snap.Ships.Available, 1)
	require.Len(t, snap.Ships.Unavailable, 1)
	assert.Equal(t, int64(128049249), snap.Ships.Available[0].ID)
	assert.Equal(t, "Python", snap.Ships.Unavailable[0].Name)
}

func TestParseOutfitting(t *testing.T) {
	doc := `{"id":128666762,"timestamp":"2025-06-01T12:00:00Z","modules":{` +
		`"b":{"id":2,"name":"Int_Hyperdrive_Size3_Class5"},` +
		`"a":{"id":1,"name":"Int_Hyperdrive_Size2_Class1"}}}`
	snap, err := ParseOutfitting([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, snap.Modules)
	require.Len(t, *snap.Modules, 2)
	// Mapping entries come out ordered by key.
	assert.Equal(t, int64(1), (*snap.Modules)[0].ID)
	assert.Equal(t, int64(2), (*snap.Modules)[1].ID)
}

func TestVendorListNormalization(t *testing.T) {
	var list VendorList
	require.NoError(t, list.UnmarshalJSON([]byte(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`)))
	require.Len(t, list, 2)

	require.NoError(t, list.UnmarshalJSON([]byte(`{"x":{"id":3,"name":"c"}}`)))
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].ID)

	require.NoError(t, list.UnmarshalJSON([]byte(`null`)))
	assert.Nil(t, list)

	assert.Error(t, list.UnmarshalJSON([]byte(`42`)))
}
