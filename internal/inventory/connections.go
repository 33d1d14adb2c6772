package inventory

import (
	"fmt"
	"sort"
	"strings"

	"go-portmap/internal/history"
	"go-portmap/internal/models"
	"go-portmap/internal/resolver"
)

// ConnectionInput is a partial connection. Nil fields are left as they are;
// customData keys are merged and an empty value removes the key.
type ConnectionInput struct {
	WallPortID        string                 `json:"wallPortId"`
	SwitchID          *string                `json:"switchId"`
	SwitchPort        *int                   `json:"switchPort"`
	ConnectionType    *models.ConnectionType `json:"connectionType"`
	Vlan              *string                `json:"vlan"`
	Room              *string                `json:"room"`
	UserID            *string                `json:"userId"`
	IPAddress         *string                `json:"ipAddress"`
	HasLink           *bool                  `json:"hasLink"`
	DeviceDescription *string                `json:"deviceDescription"`
	CustomData        map[string]string      `json:"customData"`
}

func (in ConnectionInput) apply(c *models.Connection) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&c.SwitchID, in.SwitchID)
	if in.SwitchPort != nil {
		c.SwitchPort = *in.SwitchPort
	}
	if in.ConnectionType != nil {
		c.ConnectionType = *in.ConnectionType
	}
	setString(&c.Vlan, in.Vlan)
	setString(&c.Room, in.Room)
	setString(&c.UserID, in.UserID)
	setString(&c.IPAddress, in.IPAddress)
	if in.HasLink != nil {
		c.HasLink = *in.HasLink
	}
	setString(&c.DeviceDescription, in.DeviceDescription)

	if len(in.CustomData) > 0 {
		merged := make(map[string]string, len(c.CustomData)+len(in.CustomData))
		for k, v := range c.CustomData {
			merged[k] = v
		}
		for k, v := range in.CustomData {
			if v == "" {
				delete(merged, k)
			} else {
				merged[k] = v
			}
		}
		if len(merged) == 0 {
			merged = nil
		}
		c.CustomData = merged
	}
}

// fieldNames lists the fields in set, in display order.
func (in ConnectionInput) fieldNames() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(in.SwitchID != nil, "switchId")
	add(in.SwitchPort != nil, "switchPort")
	add(in.ConnectionType != nil, "connectionType")
	add(in.Vlan != nil, "vlan")
	add(in.Room != nil, "room")
	add(in.UserID != nil, "userId")
	add(in.IPAddress != nil, "ipAddress")
	add(in.HasLink != nil, "hasLink")
	add(in.DeviceDescription != nil, "deviceDescription")
	custom := make([]string, 0, len(in.CustomData))
	for k := range in.CustomData {
		custom = append(custom, k)
	}
	sort.Strings(custom)
	return append(names, custom...)
}

// validate checks the enumerated fields of in. Switch and user ids are
// references only; dangling ones render as "None" or "Unassigned".
func (in ConnectionInput) validate() error {
	if in.ConnectionType != nil {
		switch *in.ConnectionType {
		case models.Patched, models.LocalDevice:
		default:
			return fmt.Errorf("%w: unknown connection type %q", ErrInvalidInput, *in.ConnectionType)
		}
	}
	return nil
}

// checkPort validates the switch port of c when the input touched it.
func (in ConnectionInput) checkPort(t *txn, c models.Connection) error {
	if in.SwitchID == nil && in.SwitchPort == nil {
		return nil
	}
	if c.SwitchPort < 0 {
		return fmt.Errorf("%w: port %d", ErrPortOutOfRange, c.SwitchPort)
	}
	if c.SwitchPort == 0 {
		return nil
	}
	if c.SwitchID == "" {
		return fmt.Errorf("%w: switchPort without switchId", ErrInvalidInput)
	}
	sw, ok := t.prev.Index.Switches[c.SwitchID]
	if !ok {
		return nil
	}
	if c.SwitchPort > sw.PortCount {
		return fmt.Errorf("%w: port %d on %s (1-%d)", ErrPortOutOfRange, c.SwitchPort, sw.Name, sw.PortCount)
	}
	return nil
}

func (t *txn) wallPort(id string) (models.WallPort, bool) {
	if p, ok := t.prev.Index.WallPorts[id]; ok {
		return p, true
	}
	i := indexOf(t.doc.WallPorts, func(p models.WallPort) bool { return p.ID == id })
	if i < 0 {
		return models.WallPort{}, false
	}
	return t.doc.WallPorts[i], true
}

func (t *txn) portLabel(id string) string {
	if p, ok := t.wallPort(id); ok {
		return p.PortNumber
	}
	return id
}

func (t *txn) switchName(id string) string {
	if sw, ok := t.prev.Index.Switches[id]; ok {
		return sw.Name
	}
	return "Unknown Switch"
}

// UpsertConnection creates the connection of in.WallPortID or updates it.
// When vp is set a virtual wall port is created first and the connection
// is attached to it.
func (e *Engine) UpsertConnection(in ConnectionInput, vp *VirtualPort) (models.Connection, error) {
	var result models.Connection
	err := e.mutate("upsertConnection", func(t *txn) error {
		if vp != nil {
			p, err := t.addVirtualPort(*vp)
			if err != nil {
				return err
			}
			in.WallPortID = p.ID
		}
		if in.WallPortID == "" {
			return fmt.Errorf("%w: wallPortId is required", ErrInvalidInput)
		}
		if _, ok := t.wallPort(in.WallPortID); !ok {
			return notFound("wall port", in.WallPortID)
		}
		if err := in.validate(); err != nil {
			return err
		}

		i := indexOf(t.doc.Connections, func(c models.Connection) bool { return c.WallPortID == in.WallPortID })
		if i < 0 {
			c := models.Connection{
				ID:             t.newID("c"),
				WallPortID:     in.WallPortID,
				ConnectionType: models.Patched,
				IPAddress:      models.DHCP,
				HasLink:        true,
			}
			in.apply(&c)
			if err := in.checkPort(t, c); err != nil {
				return err
			}
			c.History = []models.HistoryEntry{{Timestamp: t.now, Message: history.Created}}
			t.doc.Connections = append(t.doc.Connections, c)
			if c.OccupiesSwitchPort() {
				t.recordConnected(c)
			}
			result = c
			return nil
		}

		old := t.doc.Connections[i]
		c := old
		in.apply(&c)
		if err := in.checkPort(t, c); err != nil {
			return err
		}
		if clauses := history.Diff(&old, &c, t.prev.Index); len(clauses) > 0 {
			c.History = history.Prepend(old.History, models.HistoryEntry{Timestamp: t.now, Message: history.Updated(clauses)}, 0)
			if c.OccupiesSwitchPort() {
				t.recordModified(c, clauses)
			}
		}
		t.doc.Connections[i] = c
		result = c
		return nil
	})
	return result, err
}

func (t *txn) recordConnected(c models.Connection) {
	label, swName := t.portLabel(c.WallPortID), t.switchName(c.SwitchID)
	t.portEvent(models.SwitchPortEvent{
		SwitchID:   c.SwitchID,
		PortNumber: c.SwitchPort,
		Action:     models.ActionConnected,
		Details:    fmt.Sprintf("Connected to wall port %s", label),
		UserID:     c.UserID,
		WallPortID: c.WallPortID,
		Metadata:   map[string]any{"connectionId": c.ID},
	})
	t.activity("connection", fmt.Sprintf("Connected wall port %s to %s port %d.", label, swName, c.SwitchPort),
		map[string]any{"connectionId": c.ID, "wallPortId": c.WallPortID, "switchId": c.SwitchID})
}

func (t *txn) recordModified(c models.Connection, clauses []string) {
	details := strings.Join(clauses, ", ")
	t.portEvent(models.SwitchPortEvent{
		SwitchID:   c.SwitchID,
		PortNumber: c.SwitchPort,
		Action:     models.ActionModified,
		Details:    details,
		UserID:     c.UserID,
		WallPortID: c.WallPortID,
		Metadata:   map[string]any{"connectionId": c.ID},
	})
	t.activity("update", fmt.Sprintf("Updated connection on wall port %s: %s.", t.portLabel(c.WallPortID), details),
		map[string]any{"connectionId": c.ID, "wallPortId": c.WallPortID, "switchId": c.SwitchID})
}

type BulkResult struct {
	Updated int `json:"updated"`
	Created int `json:"created"`
}

// BulkEdit applies the same fields to the connections of every wall port in
// ids, creating patched connections for ports that have none.
func (e *Engine) BulkEdit(ids []string, in ConnectionInput) (BulkResult, error) {
	var res BulkResult
	err := e.mutate("bulkEdit", func(t *txn) error {
		fields := in.fieldNames()
		if len(ids) == 0 || len(fields) == 0 {
			return fmt.Errorf("%w: bulk edit needs wall ports and fields", ErrInvalidInput)
		}
		if err := in.validate(); err != nil {
			return err
		}

		selected := make(map[string]bool, len(ids))
		ordered := make([]string, 0, len(ids))
		for _, id := range ids {
			if selected[id] {
				continue
			}
			if _, ok := t.prev.Index.WallPorts[id]; !ok {
				return notFound("wall port", id)
			}
			selected[id] = true
			ordered = append(ordered, id)
		}

		connected := make(map[string]bool)
		for i := range t.doc.Connections {
			c := &t.doc.Connections[i]
			if !selected[c.WallPortID] {
				continue
			}
			old := *c
			in.apply(c)
			if err := in.checkPort(t, *c); err != nil {
				return err
			}
			if clauses := history.Diff(&old, c, nil); len(clauses) > 0 {
				c.History = history.Prepend(old.History, models.HistoryEntry{Timestamp: t.now, Message: history.BulkEdited(clauses)}, 0)
			}
			connected[c.WallPortID] = true
			res.Updated++
		}

		for _, id := range ordered {
			if connected[id] {
				continue
			}
			c := models.Connection{ID: t.newID("c"), WallPortID: id, IPAddress: models.DHCP}
			in.apply(&c)
			if err := in.checkPort(t, c); err != nil {
				return err
			}
			c.HasLink = true
			c.ConnectionType = models.Patched
			c.History = []models.HistoryEntry{{Timestamp: t.now, Message: history.BulkCreated(fields)}}
			t.doc.Connections = append(t.doc.Connections, c)
			res.Created++
		}

		t.activity("update", fmt.Sprintf("Bulk edit: updated %d ports (%s).", len(ordered), strings.Join(fields, ", ")),
			map[string]any{"wallPortIds": ordered, "fields": fields})
		return nil
	})
	return res, err
}

// Disconnect removes the connection of a wall port and records what it was.
func (e *Engine) Disconnect(wallPortID string) error {
	return e.mutate("disconnect", func(t *txn) error {
		i := indexOf(t.doc.Connections, func(c models.Connection) bool { return c.WallPortID == wallPortID })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNoConnection, wallPortID)
		}
		c := t.doc.Connections[i]

		desc := "Disconnected wall port " + t.portLabel(wallPortID)
		if c.SwitchID != "" {
			desc += fmt.Sprintf(" from %s port %d", t.switchName(c.SwitchID), c.SwitchPort)
		}
		if name, ok := t.prev.Index.UserName(c.UserID); ok {
			desc += fmt.Sprintf(" (user %s)", name)
		}
		if c.OccupiesSwitchPort() {
			t.portEvent(models.SwitchPortEvent{
				SwitchID:   c.SwitchID,
				PortNumber: c.SwitchPort,
				Action:     models.ActionDisconnected,
				Details:    desc,
				UserID:     c.UserID,
				WallPortID: wallPortID,
				Metadata:   map[string]any{"connectionId": c.ID},
			})
		}
		t.activity("disconnect", desc+".", map[string]any{"connectionId": c.ID, "wallPortId": wallPortID})

		t.doc.Connections, _ = removeWhere(t.doc.Connections, func(x models.Connection) bool { return x.WallPortID == wallPortID })
		return nil
	})
}

// DeletePort removes a wall port together with its connection.
func (e *Engine) DeletePort(id string) (Impact, error) {
	return e.Delete(KindWallPorts, id)
}

// NextAvailablePort returns the lowest free port of a switch; ok is false
// when every port is taken.
func (e *Engine) NextAvailablePort(switchID string) (port int, ok bool, err error) {
	s := e.Snapshot()
	sw, found := s.Index.Switches[switchID]
	if !found {
		return 0, false, notFound("switch", switchID)
	}
	port, ok = resolver.NextAvailablePort(sw, s.Doc.Connections)
	return port, ok, nil
}
