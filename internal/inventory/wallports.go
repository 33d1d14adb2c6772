package inventory

import (
	"fmt"

	"go-portmap/internal/models"
	"go-portmap/internal/portname"
)

const maxBatchPorts = 1000

// VirtualPort describes an ad hoc wall port created together with a
// connection.
type VirtualPort struct {
	FloorID    string `json:"floorId"`
	PortNumber string `json:"portNumber"`
}

func (t *txn) addVirtualPort(vp VirtualPort) (models.WallPort, error) {
	if _, ok := t.prev.Index.Floors[vp.FloorID]; !ok {
		return models.WallPort{}, notFound("floor", vp.FloorID)
	}
	label := portname.Normalize(vp.PortNumber)
	if label == "" {
		return models.WallPort{}, fmt.Errorf("%w: port number is required", ErrInvalidInput)
	}
	p := models.WallPort{ID: t.newID("virtual"), FloorID: vp.FloorID, PortNumber: label, IsVirtual: true}
	t.doc.WallPorts = append(t.doc.WallPorts, p)
	return p, nil
}

// AddWallPort adds one port labelled label to a floor.
func (e *Engine) AddWallPort(floorID, label string) (models.WallPort, error) {
	var p models.WallPort
	err := e.mutate("addWallPort", func(t *txn) error {
		if _, ok := t.prev.Index.Floors[floorID]; !ok {
			return notFound("floor", floorID)
		}
		l := portname.Normalize(label)
		if l == "" {
			return fmt.Errorf("%w: port number is required", ErrInvalidInput)
		}
		if t.floorLabels(floorID)[l] {
			return fmt.Errorf("%w: wall port %s", ErrDuplicate, l)
		}
		p = models.WallPort{ID: t.newID("wp"), FloorID: floorID, PortNumber: l}
		t.doc.WallPorts = append(t.doc.WallPorts, p)
		return nil
	})
	return p, err
}

// floorLabels returns the port labels already used on a floor.
func (t *txn) floorLabels(floorID string) map[string]bool {
	labels := make(map[string]bool)
	for _, p := range t.prev.Index.WallPortsByFloor[floorID] {
		labels[p.PortNumber] = true
	}
	return labels
}

// BatchAddWallPorts adds ports prefix+001.. for start..end to a floor,
// skipping labels already on the floor. It returns how many were added.
func (e *Engine) BatchAddWallPorts(floorID string, start, end int, prefix string) (int, error) {
	added := 0
	err := e.mutate("batchAddWallPorts", func(t *txn) error {
		floor, ok := t.prev.Index.Floors[floorID]
		if !ok {
			return notFound("floor", floorID)
		}
		if start < 1 || end < start || end-start >= maxBatchPorts {
			return fmt.Errorf("%w: range %d-%d", ErrInvalidInput, start, end)
		}
		prefix = portname.Normalize(prefix)
		labels := t.floorLabels(floorID)
		for n := start; n <= end; n++ {
			label := portname.Pad(prefix, n)
			if labels[label] {
				continue
			}
			labels[label] = true
			t.doc.WallPorts = append(t.doc.WallPorts, models.WallPort{ID: t.newID("wp"), FloorID: floorID, PortNumber: label})
			added++
		}
		if added > 0 {
			t.activity("info", fmt.Sprintf("Added %d wall ports to floor '%s'.", added, floor.Name),
				map[string]any{"floorId": floorID})
		}
		return nil
	})
	return added, err
}

// RenameWallPort changes a port label. The port id does not change.
func (e *Engine) RenameWallPort(id, label string) error {
	return e.mutate("renameWallPort", func(t *txn) error {
		l := portname.Normalize(label)
		if l == "" {
			return fmt.Errorf("%w: port number is required", ErrInvalidInput)
		}
		i := indexOf(t.doc.WallPorts, func(p models.WallPort) bool { return p.ID == id })
		if i < 0 {
			return notFound("wall port", id)
		}
		p := t.doc.WallPorts[i]
		if p.PortNumber == l {
			return nil
		}
		for _, other := range t.prev.Index.WallPortsByFloor[p.FloorID] {
			if other.ID != id && other.PortNumber == l {
				return fmt.Errorf("%w: wall port %s", ErrDuplicate, l)
			}
		}
		t.doc.WallPorts[i].PortNumber = l
		t.activity("info", fmt.Sprintf("Renamed wall port '%s' to '%s'.", p.PortNumber, l), map[string]any{"wallPortId": id})
		return nil
	})
}

func (e *Engine) SetWallPortPinned(id string, pinned bool) error {
	return e.mutate("pinWallPort", func(t *txn) error {
		i := indexOf(t.doc.WallPorts, func(p models.WallPort) bool { return p.ID == id })
		if i < 0 {
			return notFound("wall port", id)
		}
		t.doc.WallPorts[i].IsPinned = pinned
		return nil
	})
}

func (e *Engine) SetSwitchPinned(id string, pinned bool) error {
	return e.mutate("pinSwitch", func(t *txn) error {
		i := indexOf(t.doc.Switches, func(s models.Switch) bool { return s.ID == id })
		if i < 0 {
			return notFound("switch", id)
		}
		t.doc.Switches[i].IsPinned = pinned
		return nil
	})
}
