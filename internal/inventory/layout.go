package inventory

import (
	"fmt"

	"go-portmap/internal/models"
	"go-portmap/internal/resolver"
)

// SetSwitchLayout selects a layout template for a switch. rows, when not
// nil, replaces the switch's own custom rows.
func (e *Engine) SetSwitchLayout(switchID, templateID string, rows [][]int) error {
	return e.mutate("setSwitchLayout", func(t *txn) error {
		i := indexOf(t.doc.Switches, func(s models.Switch) bool { return s.ID == switchID })
		if i < 0 {
			return notFound("switch", switchID)
		}
		if templateID == "" {
			templateID = models.DefaultLayoutTemplateID
		}
		if _, ok := t.prev.Index.LayoutTemplates[templateID]; !ok {
			return notFound("layout template", templateID)
		}
		sw := &t.doc.Switches[i]
		sw.LayoutTemplateID = templateID
		if rows == nil {
			return nil
		}

		seen := make(map[int]bool)
		custom := make([][]int, 0, len(rows))
		for _, row := range rows {
			r := make([]int, 0, len(row))
			for _, p := range row {
				if p < 1 || p > sw.PortCount {
					return fmt.Errorf("%w: port %d on %s (1-%d)", ErrPortOutOfRange, p, sw.Name, sw.PortCount)
				}
				if seen[p] {
					return fmt.Errorf("%w: port %d appears twice", ErrDuplicate, p)
				}
				seen[p] = true
				r = append(r, p)
			}
			custom = append(custom, r)
		}
		sw.CustomLayout = &models.CustomLayout{Rows: custom}
		return nil
	})
}

// SwitchLayout returns the display rows of a switch's ports.
func (e *Engine) SwitchLayout(switchID string) ([][]int, error) {
	s := e.Snapshot()
	sw, ok := s.Index.Switches[switchID]
	if !ok {
		return nil, notFound("switch", switchID)
	}
	return resolver.Layout(sw, resolver.ResolveTemplate(s.Index.LayoutTemplates, sw)), nil
}

// SetClosetLayout replaces the rack arrangement of a floor.
func (e *Engine) SetClosetLayout(floorID string, items []models.ClosetItem) error {
	return e.mutate("setClosetLayout", func(t *txn) error {
		if _, ok := t.prev.Index.Floors[floorID]; !ok {
			return notFound("floor", floorID)
		}
		out := make([]models.ClosetItem, 0, len(items))
		for _, it := range items {
			switch it.Type {
			case models.ClosetSwitch:
				if _, ok := t.prev.Index.Switches[it.SwitchID]; !ok {
					return notFound("switch", it.SwitchID)
				}
			case models.ClosetPatchPanel:
				if it.StartPort < 1 || it.EndPort < it.StartPort {
					return fmt.Errorf("%w: patch panel ports %d-%d", ErrInvalidInput, it.StartPort, it.EndPort)
				}
			default:
				return fmt.Errorf("%w: unknown closet item type %q", ErrInvalidInput, it.Type)
			}
			if it.ID == "" {
				it.ID = t.newID("closet")
			}
			out = append(out, it)
		}
		t.doc.ClosetLayouts[floorID] = out
		return nil
	})
}

// ClosetRow is one rendered closet item with its port rows.
type ClosetRow struct {
	Item models.ClosetItem `json:"item"`
	Rows [][]int           `json:"rows"`
}

// ClosetLayout renders the rack arrangement of a floor.
func (e *Engine) ClosetLayout(floorID string) ([]ClosetRow, error) {
	s := e.Snapshot()
	if _, ok := s.Index.Floors[floorID]; !ok {
		return nil, notFound("floor", floorID)
	}
	items := s.Doc.ClosetLayouts[floorID]
	out := make([]ClosetRow, 0, len(items))
	for _, it := range items {
		row := ClosetRow{Item: it}
		switch it.Type {
		case models.ClosetPatchPanel:
			row.Rows = resolver.PatchPanelRows(it)
		case models.ClosetSwitch:
			if sw, ok := s.Index.Switches[it.SwitchID]; ok {
				row.Rows = resolver.Layout(sw, resolver.ResolveTemplate(s.Index.LayoutTemplates, sw))
			}
		}
		out = append(out, row)
	}
	return out, nil
}
