package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommander(t *testing.T) {
	ev, err := Decode([]byte(`{"timestamp":"2025-06-01T12:00:00Z","event":"Commander","Name":"Jameson"}`))
	require.NoError(t, err)
	cmdr, ok := ev.(Commander)
	require.True(t, ok)
	assert.Equal(t, "Jameson", cmdr.Name)
}

func TestDecodeLoadGame(t *testing.T) {
	ev, err := Decode([]byte(`{"timestamp":"2025-06-01T12:00:00Z","event":"LoadGame","Commander":"Jameson"}`))
	require.NoError(t, err)
	cmdr, ok := ev.(Commander)
	require.True(t, ok)
	assert.Equal(t, "Jameson", cmdr.Name)
}

func TestDecodeFSDJump(t *testing.T) {
	line := `{"timestamp":"2025-06-01T12:00:00Z","event":"FSDJump","SystemAddress":3932277478106,` +
		`"StarSystem":"Shinrarta Dezhra","StarPos":[55.71875,17.59375,27.15625]}`
	ev, err := Decode([]byte(line))
	require.NoError(t, err)
	loc, ok := ev.(LocationChanged)
	require.True(t, ok)
	assert.Equal(t, int64(3932277478106), loc.SystemAddress)
	assert.Equal(t, "Shinrarta Dezhra", loc.StarSystem)
	assert.Equal(t, [3]float64{55.71875, 17.59375, 27.15625}, loc.StarPos)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), loc.Timestamp)
}

func TestDecodeLocationNameFallbacks(t *testing.T) {
	ev, err := Decode([]byte(`{"timestamp":"2025-06-01T12:00:00Z","event":"Location","SystemAddress":1,"SystemName":"Sol"}`))
	require.NoError(t, err)
	assert.Equal(t, "Sol", ev.(LocationChanged).StarSystem)

	ev, err = Decode([]byte(`{"timestamp":"2025-06-01T12:00:00Z","event":"CarrierJump","SystemAddress":1,"System":"Sol"}`))
	require.NoError(t, err)
	assert.Equal(t, "Sol", ev.(LocationChanged).StarSystem)
}

func TestDecodeNavRoute(t *testing.T) {
	line := `{"timestamp":"2025-06-01T12:00:00Z","event":"NavRoute","Route":[` +
		`{"SystemAddress":1,"StarSystem":"Sol","StarPos":[0,0,0]},` +
		`{"SystemAddress":2,"StarSystem":"Barnard's Star","StarPos":[-3.03125,1.6875,3.03125]}]}`
	ev, err := Decode([]byte(line))
	require.NoError(t, err)
	route, ok := ev.(NavRoute)
	require.True(t, ok)
	require.Len(t, route.Legs, 2)
	assert.Equal(t, "Sol", route.Legs[0].StarSystem)
	// Legs inherit the route timestamp.
	assert.Equal(t, route.Timestamp, route.Legs[1].Timestamp)
}

func TestDecodeDocked(t *testing.T) {
	line := `{"timestamp":"2025-06-01T12:00:00Z","event":"Docked","SystemAddress":3932277478106,` +
		`"MarketID":128666762,"StationName":"Jameson Memorial","StationType":"Orbis",` +
		`"DistFromStarLS":324.567,"StationServices":["dock","commodities","shipyard"],` +
		`"LandingPads":{"Small":17,"Medium":18,"Large":9}}`
	ev, err := Decode([]byte(line))
	require.NoError(t, err)
	docked, ok := ev.(Docked)
	require.True(t, ok)
	assert.Equal(t, int64(128666762), docked.MarketID)
	assert.Equal(t, "Jameson Memorial", docked.StationName)
	assert.Equal(t, LandingPads{Small: 17, Medium: 18, Large: 9}, docked.LandingPads)
	assert.Equal(t, []string{"dock", "commodities", "shipyard"}, docked.StationServices)
}

func TestDecodeSnapshotSignals(t *testing.T) {
	for name, kind := range map[string]SnapshotKind{
		"Market":     KindMarket,
		"Shipyard":   KindShipyard,
		"Outfitting": KindOutfitting,
	} {
		ev, err := Decode([]byte(`{"timestamp":"2025-06-01T12:00:00Z","event":"` + name + `","MarketID":42}`))
		require.NoError(t, err)
		signal, ok := ev.(SnapshotSignal)
		require.True(t, ok, name)
		assert.Equal(t, kind, signal.Kind)
		assert.Equal(t, int64(42), signal.MarketID)
	}
}

func TestDecodeUninterestingEvent(t *testing.T) {
	ev, err := Decode([]byte(`{"timestamp":"2025-06-01T12:00:00Z","event":"Music","MusicTrack":"NoTrack"}`))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeMalformedLine(t *testing.T) {
	_, err := Decode([]byte(`{"event":`))
	assert.Error(t, err)
}
