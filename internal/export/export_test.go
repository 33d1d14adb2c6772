package export

import (
	"bytes"
	"testing"

	"go-portmap/internal/inventory"
	"go-portmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func snapshot(t *testing.T) *inventory.Snapshot {
	t.Helper()
	doc := &models.Document{
		Floors: []models.Floor{{ID: "f1", Name: "Floor 1"}},
		WallPorts: []models.WallPort{
			{ID: "p2", FloorID: "f1", PortNumber: "002"},
			{ID: "p1", FloorID: "f1", PortNumber: "001"},
			{ID: "v1", FloorID: "f1", PortNumber: "TEMP", IsVirtual: true},
		},
		Switches: []models.Switch{{ID: "sw1", Name: "Access-A", IP: "10.0.0.1", PortCount: 3, FloorID: "f1"}},
		Users:    []models.User{{ID: "u1", Name: "Doe, John"}},
		Connections: []models.Connection{
			{ID: "c1", WallPortID: "p1", SwitchID: "sw1", SwitchPort: 2, ConnectionType: models.Patched, UserID: "u1", IPAddress: "DHCP", HasLink: false, Vlan: "100"},
			{ID: "c2", WallPortID: "v1", ConnectionType: models.LocalDevice, DeviceDescription: `Printer "HP"`, IPAddress: "10.0.0.9"},
		},
	}
	return inventory.New(doc, inventory.Options{}).Snapshot()
}

func TestWallPortRows(t *testing.T) {
	tbl, err := WallPortRows(snapshot(t), "f1")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)

	assert.Equal(t, []string{"001", "Connected", "Patched to Switch", "Access-A", "10.0.0.1", "2", "Down", "", "100", "", "Doe, John", "DHCP", "Floor 1", "Physical"}, tbl.Rows[0])
	assert.Equal(t, []string{"002", "Disconnected", "", "", "", "", "", "", "", "", "", "", "Floor 1", "Physical"}, tbl.Rows[1])
	assert.Equal(t, "Local Device", tbl.Rows[2][2])
	assert.Equal(t, "Up", tbl.Rows[2][6])
	assert.Equal(t, "Virtual", tbl.Rows[2][13])

	_, err = WallPortRows(snapshot(t), "f9")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestSwitchRows(t *testing.T) {
	tbl := SwitchRows(snapshot(t))
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "Available", tbl.Rows[0][4])
	assert.Equal(t, "Used", tbl.Rows[1][4])
	assert.Equal(t, "001", tbl.Rows[1][7])
	assert.Equal(t, "Doe, John", tbl.Rows[1][11])
	assert.Equal(t, "Physical", tbl.Rows[1][14])
}

func TestWriteCSV_Quoting(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, Table{
		Header: []string{"Name", "Note"},
		Rows:   [][]string{{"Doe, John", `say "hi"`}, {"plain", "two\nlines"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Note\n\"Doe, John\",\"say \"\"hi\"\"\"\nplain,\"two\nlines\"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	tbl, err := WallPortRows(snapshot(t), "f1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tbl, "Wall Ports"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Wall Ports"}, f.GetSheetList())
	rows, err := f.GetRows("Wall Ports")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, wallPortHeader, rows[0])
	assert.Equal(t, "001", rows[1][0])
	assert.Equal(t, "Doe, John", rows[1][10])
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "wall-ports-Floor-1-2024-05-01", WallPortFilename("Floor  1", "2024-05-01"))
	assert.Equal(t, "switches-overview-2024-05-01", SwitchFilename("2024-05-01"))
}
