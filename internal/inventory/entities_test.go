package inventory

import (
	"testing"

	"go-portmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedEngine(t *testing.T) *Engine {
	t.Helper()
	e := newEngine(t)
	_, err := e.UpsertConnection(ConnectionInput{WallPortID: "p1", SwitchID: str("sw1"), SwitchPort: num(1), UserID: str("u1")}, nil)
	require.NoError(t, err)
	_, err = e.UpsertConnection(ConnectionInput{WallPortID: "p2", ConnectionType: ptrType(models.LocalDevice), UserID: str("u1")}, nil)
	require.NoError(t, err)
	require.NoError(t, e.SetClosetLayout("f1", []models.ClosetItem{
		{Type: models.ClosetPatchPanel, StartPort: 1, EndPort: 24, PortsPerRow: 12},
		{Type: models.ClosetSwitch, SwitchID: "sw1"},
	}))
	return e
}

func TestDeleteSwitch_Cascades(t *testing.T) {
	e := connectedEngine(t)

	impact, err := e.DeleteImpact(KindSwitches, "sw1")
	require.NoError(t, err)
	assert.Equal(t, Impact{Connections: 1, ClosetItems: 1}, impact)
	assert.Contains(t, e.Snapshot().Index.Switches, "sw1")

	impact, err = e.Delete(KindSwitches, "sw1")
	require.NoError(t, err)
	assert.True(t, impact.Cascades())

	s := e.Snapshot()
	assert.NotContains(t, s.Index.Switches, "sw1")
	for _, c := range s.Doc.Connections {
		assert.NotEqual(t, "sw1", c.SwitchID)
	}
	assert.Len(t, s.Doc.Connections, 1)
	require.Len(t, s.Doc.ClosetLayouts["f1"], 1)
	assert.Equal(t, models.ClosetPatchPanel, s.Doc.ClosetLayouts["f1"][0].Type)
}

func TestDeleteFloor_Cascades(t *testing.T) {
	e := connectedEngine(t)
	_, err := e.AddFloor("Floor 2")
	require.NoError(t, err)

	impact, err := e.Delete(KindFloors, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, impact.WallPorts)
	assert.Equal(t, 1, impact.Switches)
	assert.Equal(t, 2, impact.Connections)
	assert.Equal(t, 2, impact.ClosetItems)

	s := e.Snapshot()
	assert.Len(t, s.Doc.Floors, 1)
	assert.Empty(t, s.Doc.WallPorts)
	assert.Empty(t, s.Doc.Switches)
	assert.Empty(t, s.Doc.Connections)
	assert.NotContains(t, s.Doc.ClosetLayouts, "f1")
	assert.NotContains(t, s.Index.WallPortsByFloor, "f1")
}

func TestDeleteUser_ClearsReferences(t *testing.T) {
	e := connectedEngine(t)
	impact, err := e.Delete(KindUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, impact.Reassigned)
	assert.False(t, impact.Cascades())

	s := e.Snapshot()
	assert.Len(t, s.Doc.Connections, 2)
	for _, c := range s.Doc.Connections {
		assert.Empty(t, c.UserID)
	}
}

func TestDeleteCategory_ReassignsSwitches(t *testing.T) {
	e := newEngine(t)
	cat, err := e.AddCategory("Edge", "#fff")
	require.NoError(t, err)
	_, err = e.UpdateSwitch("sw1", SwitchFields{CategoryID: &cat.ID})
	require.NoError(t, err)

	_, err = e.Delete(KindSwitchCategories, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategoryID, e.Snapshot().Index.Switches["sw1"].CategoryID)

	_, err = e.Delete(KindSwitchCategories, models.DefaultCategoryID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteLayoutTemplate_ResetsSwitches(t *testing.T) {
	e := newEngine(t)
	tmpl, err := e.AddLayoutTemplate(models.SwitchLayoutTemplate{
		Name:   "Rows of 6",
		Config: models.LayoutConfig{Type: models.LayoutSequential, PortsPerRow: 6},
	})
	require.NoError(t, err)
	require.NoError(t, e.SetSwitchLayout("sw1", tmpl.ID, nil))

	_, err = e.Delete(KindLayoutTemplates, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLayoutTemplateID, e.Snapshot().Index.Switches["sw1"].LayoutTemplateID)
}

func TestDelete_Unknown(t *testing.T) {
	e := newEngine(t)
	for _, k := range []Kind{KindFloors, KindSwitches, KindWallPorts, KindUsers, KindSwitchCategories, KindLayoutTemplates} {
		_, err := e.Delete(k, "ghost")
		assert.ErrorIs(t, err, ErrNotFound, string(k))
	}
	_, err := e.Delete("assets", "a1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddSwitch(t *testing.T) {
	e := newEngine(t)
	sw, err := e.AddSwitch(SwitchFields{Name: str(" Core "), PortCount: num(48), FloorID: str("f1"), IP: str("10.0.0.2")})
	require.NoError(t, err)
	assert.Equal(t, "Core", sw.Name)
	assert.Equal(t, models.DefaultCategoryID, sw.CategoryID)
	assert.Equal(t, models.DefaultLayoutTemplateID, sw.LayoutTemplateID)

	_, err = e.AddSwitch(SwitchFields{Name: str("x"), PortCount: num(0), FloorID: str("f1")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.AddSwitch(SwitchFields{Name: str("x"), PortCount: num(8), FloorID: str("f9")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.AddSwitch(SwitchFields{Name: str("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateSwitch_PortCountKeepsConnectionsInRange(t *testing.T) {
	doc := fixture()
	doc.Switches[0].PortCount = 48
	doc.Connections = []models.Connection{
		{ID: "c1", WallPortID: "p1", SwitchID: "sw1", SwitchPort: 40, ConnectionType: models.Patched},
	}
	e := New(doc, testOptions())

	_, err := e.UpdateSwitch("sw1", SwitchFields{PortCount: num(24)})
	assert.ErrorIs(t, err, ErrPortOutOfRange)
	assert.Equal(t, 48, e.Snapshot().Index.Switches["sw1"].PortCount)

	sw, err := e.UpdateSwitch("sw1", SwitchFields{PortCount: num(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, sw.PortCount)
}

func TestRenameUser(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.RenameUser("u1", "Jonathan Doe"))
	s := e.Snapshot()
	assert.Equal(t, "Jonathan Doe", s.Index.Users["u1"].Name)
	require.Len(t, s.Doc.ActivityLog, 1)
	assert.Equal(t, "Renamed user 'John Doe' to 'Jonathan Doe'.", s.Doc.ActivityLog[0].Message)

	assert.ErrorIs(t, e.RenameUser("u9", "x"), ErrNotFound)
	assert.ErrorIs(t, e.RenameUser("u1", "  "), ErrInvalidInput)
}

func TestVlanColors(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.UpsertVlanColor("400", "#123456"))
	require.NoError(t, e.UpsertVlanColor("400", "#654321"))
	assert.Equal(t, "#654321", e.Snapshot().Index.VlanColors["400"].Color)

	require.NoError(t, e.DeleteVlanColor("400"))
	assert.NotContains(t, e.Snapshot().Index.VlanColors, "400")
	assert.ErrorIs(t, e.DeleteVlanColor("400"), ErrNotFound)
	assert.ErrorIs(t, e.UpsertVlanColor("", "#000"), ErrInvalidInput)
}

func TestColumns(t *testing.T) {
	e := newEngine(t)
	col, err := e.AddCustomColumn("Asset Tag")
	require.NoError(t, err)
	assert.True(t, col.IsCustom)

	cols := e.Snapshot().Doc.Columns
	assert.Equal(t, col, cols[len(cols)-1])

	err = e.SetColumns([]models.Column{{ID: "a", Label: "A"}, {ID: "a", Label: "B"}})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, e.SetColumns([]models.Column{{ID: "room", Label: "Room", Visible: true}}))
	assert.Len(t, e.Snapshot().Doc.Columns, 1)
}
