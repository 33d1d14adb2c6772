// Package export flattens the inventory into the tables offered for
// download from the wall port and switch views.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"go-portmap/internal/index"
	"go-portmap/internal/inventory"
	"go-portmap/internal/models"

	"github.com/xuri/excelize/v2"
)

type Table struct {
	Header []string
	Rows   [][]string
}

var wallPortHeader = []string{
	"Port Number", "Connection Status", "Connection Type", "Switch", "Switch IP", "Switch Port",
	"Link Status", "Device Description", "VLAN", "Room", "Assigned User", "IP Address", "Floor", "Port Type",
}

var switchHeader = []string{
	"Switch Name", "Switch IP", "Floor", "Switch Port", "Port Status", "Connection Type", "Link Status",
	"Wall Port", "VLAN", "Room", "Device Description", "Assigned User", "User Department", "IP Address",
	"Wall Port Type",
}

func linkStatus(c models.Connection) string {
	if c.ConnectionType == models.LocalDevice || c.HasLink {
		return "Up"
	}
	return "Down"
}

func portType(p models.WallPort) string {
	if p.IsVirtual {
		return "Virtual"
	}
	return "Physical"
}

// WallPortRows lists the wall ports of one floor with their connection.
func WallPortRows(s *inventory.Snapshot, floorID string) (Table, error) {
	floor, ok := s.Index.Floors[floorID]
	if !ok {
		return Table{}, fmt.Errorf("%w: floor %q", inventory.ErrNotFound, floorID)
	}
	t := Table{Header: wallPortHeader}
	for _, p := range s.Index.WallPortsByFloor[floorID] {
		row := make([]string, len(wallPortHeader))
		row[0] = p.PortNumber
		row[1] = "Disconnected"
		row[12] = floor.Name
		row[13] = portType(p)

		if c, ok := s.Index.ConnectionsByWallPort[p.ID]; ok {
			row[1] = "Connected"
			row[2] = "Patched to Switch"
			if c.ConnectionType == models.LocalDevice {
				row[2] = "Local Device"
			} else if c.SwitchPort > 0 {
				row[5] = strconv.Itoa(c.SwitchPort)
			}
			if sw, ok := s.Index.Switches[c.SwitchID]; ok {
				row[3], row[4] = sw.Name, sw.IP
			}
			row[6] = linkStatus(c)
			row[7] = c.DeviceDescription
			row[8] = c.Vlan
			row[9] = c.Room
			row[10] = userName(s.Index, c.UserID)
			row[11] = c.IPAddress
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// SwitchRows lists every port of every switch, used or not.
func SwitchRows(s *inventory.Snapshot) Table {
	t := Table{Header: switchHeader}
	for _, sw := range s.Doc.Switches {
		floorName := "Unknown"
		if f, ok := s.Index.Floors[sw.FloorID]; ok {
			floorName = f.Name
		}
		for port := 1; port <= sw.PortCount; port++ {
			row := make([]string, len(switchHeader))
			row[0], row[1], row[2] = sw.Name, sw.IP, floorName
			row[3] = strconv.Itoa(port)
			row[4] = "Available"

			if c, ok := s.Index.ConnectionsBySwitchPort[index.SwitchPortKey(sw.ID, port)]; ok {
				row[4] = "Used"
				row[5] = "Patched"
				if c.ConnectionType == models.LocalDevice {
					row[5] = "Local Device"
				}
				row[6] = linkStatus(c)
				if p, ok := s.Index.WallPorts[c.WallPortID]; ok {
					row[7] = p.PortNumber
					row[14] = portType(p)
				}
				row[8] = c.Vlan
				row[9] = c.Room
				row[10] = c.DeviceDescription
				row[11] = userName(s.Index, c.UserID)
				row[13] = c.IPAddress
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func userName(idx *index.Indices, id string) string {
	name, _ := idx.UserName(id)
	return name
}

var whitespace = regexp.MustCompile(`\s+`)

// WallPortFilename names a wall port export, e.g. wall-ports-Floor-1-2024-05-01.
// The extension is added by the caller.
func WallPortFilename(floorName, date string) string {
	return fmt.Sprintf("wall-ports-%s-%s", whitespace.ReplaceAllString(floorName, "-"), date)
}

func SwitchFilename(date string) string {
	return "switches-overview-" + date
}

// WriteCSV writes the header and rows with standard CSV quoting.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes the table as a single-sheet workbook with a bold,
// frozen header row.
func WriteXLSX(w io.Writer, t Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	f.SetActiveSheet(idx)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	for r, row := range t.Rows {
		for col, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
