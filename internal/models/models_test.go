package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_DoesNotShareCollections(t *testing.T) {
	doc := &Document{
		Floors:      []Floor{{ID: "f1", Name: "Floor 1"}},
		Connections: []Connection{{ID: "c-1", WallPortID: "p1", Vlan: "100"}},
		ClosetLayouts: map[string][]ClosetItem{
			"f1": {{ID: "sw-item", Type: ClosetSwitch, SwitchID: "sw1"}},
		},
	}

	clone := doc.Clone()
	clone.Floors[0].Name = "renamed"
	clone.Connections[0].Vlan = "200"
	clone.ClosetLayouts["f1"][0].SwitchID = "sw2"
	clone.ClosetLayouts["f4"] = nil

	assert.Equal(t, "Floor 1", doc.Floors[0].Name)
	assert.Equal(t, "100", doc.Connections[0].Vlan)
	assert.Equal(t, "sw1", doc.ClosetLayouts["f1"][0].SwitchID)
	_, ok := doc.ClosetLayouts["f4"]
	assert.False(t, ok)
}

func TestClone_KeepsEmptyCollectionsNonNil(t *testing.T) {
	clone := (&Document{}).Clone()
	require.NotNil(t, clone.WallPorts)
	require.NotNil(t, clone.ClosetLayouts)
	assert.Len(t, clone.WallPorts, 0)
}

func TestOccupiesSwitchPort(t *testing.T) {
	assert.True(t, Connection{ConnectionType: Patched, SwitchID: "sw1", SwitchPort: 3}.OccupiesSwitchPort())
	assert.False(t, Connection{ConnectionType: LocalDevice, SwitchID: "sw1", SwitchPort: 3}.OccupiesSwitchPort())
	assert.False(t, Connection{ConnectionType: Patched, SwitchID: "sw1"}.OccupiesSwitchPort())
}
