// Package resolver answers port placement questions for a switch: which port
// is free next, and how its ports are arranged into display rows.
package resolver

import (
	"go-portmap/internal/models"
)

const defaultPortsPerRow = 10

// NextAvailablePort returns the lowest port in 1..PortCount not claimed by a
// patched connection on sw. ok is false when every port is taken.
func NextAvailablePort(sw models.Switch, conns []models.Connection) (port int, ok bool) {
	used := make(map[int]struct{})
	for _, c := range conns {
		if c.SwitchID == sw.ID && c.ConnectionType == models.Patched {
			used[c.SwitchPort] = struct{}{}
		}
	}
	for p := 1; p <= sw.PortCount; p++ {
		if _, taken := used[p]; !taken {
			return p, true
		}
	}
	return 0, false
}

// FallbackTemplate is used when a switch names a template that does not exist.
var FallbackTemplate = models.SwitchLayoutTemplate{
	ID:     models.DefaultLayoutTemplateID,
	Name:   "Odd/Even",
	Type:   "automatic",
	Config: models.LayoutConfig{Type: models.LayoutOddEven},
}

// ResolveTemplate finds the layout template a switch renders with.
func ResolveTemplate(templates map[string]models.SwitchLayoutTemplate, sw models.Switch) models.SwitchLayoutTemplate {
	id := sw.LayoutTemplateID
	if id == "" {
		id = models.DefaultLayoutTemplateID
	}
	if t, ok := templates[id]; ok {
		return t
	}
	return FallbackTemplate
}

func allPorts(n int) []int {
	ports := make([]int, 0, n)
	for p := 1; p <= n; p++ {
		ports = append(ports, p)
	}
	return ports
}

// Layout arranges the ports of sw into rows according to tmpl.
//
// For custom templates the switch's own rows are used as-is; ports missing
// from every custom row are not shown.
func Layout(sw models.Switch, tmpl models.SwitchLayoutTemplate) [][]int {
	ports := allPorts(sw.PortCount)
	var rows [][]int

	switch tmpl.Config.Type {
	case models.LayoutOddEven:
		var odd, even []int
		for _, p := range ports {
			if p%2 != 0 {
				odd = append(odd, p)
			} else {
				even = append(even, p)
			}
		}
		rows = [][]int{odd, even}
	case models.LayoutSequential:
		rows = Chunk(ports, tmpl.Config.PortsPerRow)
	case models.LayoutCustom:
		if sw.CustomLayout != nil {
			rows = nonEmpty(sw.CustomLayout.Rows)
		}
		if len(rows) == 0 {
			rows = [][]int{ports}
		}
	default:
		rows = [][]int{ports}
	}
	return nonEmpty(rows)
}

// Chunk splits ports into consecutive rows of n; the last row may be shorter.
func Chunk(ports []int, n int) [][]int {
	if n <= 0 {
		n = defaultPortsPerRow
	}
	var rows [][]int
	for i := 0; i < len(ports); i += n {
		end := i + n
		if end > len(ports) {
			end = len(ports)
		}
		row := make([]int, end-i)
		copy(row, ports[i:end])
		rows = append(rows, row)
	}
	return rows
}

// PatchPanelRows lays out a closet patch panel covering StartPort..EndPort.
func PatchPanelRows(item models.ClosetItem) [][]int {
	if item.Type != models.ClosetPatchPanel || item.EndPort < item.StartPort {
		return nil
	}
	ports := make([]int, 0, item.EndPort-item.StartPort+1)
	for p := item.StartPort; p <= item.EndPort; p++ {
		ports = append(ports, p)
	}
	return Chunk(ports, item.PortsPerRow)
}

func nonEmpty(rows [][]int) [][]int {
	out := make([][]int, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	return out
}
