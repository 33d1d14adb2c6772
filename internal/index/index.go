// Package index derives the lookup maps the views read from. Everything here
// is a pure function of one Document.
package index

import (
	"strconv"

	"go-portmap/internal/models"
	"go-portmap/internal/portname"
)

type Indices struct {
	Floors           map[string]models.Floor
	WallPorts        map[string]models.WallPort
	Switches         map[string]models.Switch
	SwitchCategories map[string]models.SwitchCategory
	Users            map[string]models.User
	VlanColors       map[string]models.VlanColor
	LayoutTemplates  map[string]models.SwitchLayoutTemplate

	ConnectionsByWallPort   map[string]models.Connection
	ConnectionsBySwitchPort map[string]models.Connection
	WallPortsByFloor        map[string][]models.WallPort
}

// SwitchPortKey is the "<switchId>-<switchPort>" key of ConnectionsBySwitchPort.
func SwitchPortKey(switchID string, port int) string {
	return switchID + "-" + strconv.Itoa(port)
}

func Build(doc *models.Document) *Indices {
	idx := &Indices{
		Floors:                  byID(doc.Floors, func(f models.Floor) string { return f.ID }),
		WallPorts:               byID(doc.WallPorts, func(p models.WallPort) string { return p.ID }),
		Switches:                byID(doc.Switches, func(s models.Switch) string { return s.ID }),
		SwitchCategories:        byID(doc.SwitchCategories, func(c models.SwitchCategory) string { return c.ID }),
		Users:                   byID(doc.Users, func(u models.User) string { return u.ID }),
		VlanColors:              byID(doc.VlanColors, func(v models.VlanColor) string { return v.VlanID }),
		LayoutTemplates:         byID(doc.SwitchLayoutTemplates, func(t models.SwitchLayoutTemplate) string { return t.ID }),
		ConnectionsByWallPort:   make(map[string]models.Connection, len(doc.Connections)),
		ConnectionsBySwitchPort: make(map[string]models.Connection, len(doc.Connections)),
		WallPortsByFloor:        make(map[string][]models.WallPort, len(doc.Floors)),
	}

	for _, c := range doc.Connections {
		idx.ConnectionsByWallPort[c.WallPortID] = c
		if c.SwitchID != "" && c.SwitchPort > 0 {
			idx.ConnectionsBySwitchPort[SwitchPortKey(c.SwitchID, c.SwitchPort)] = c
		}
	}

	for _, f := range doc.Floors {
		idx.WallPortsByFloor[f.ID] = []models.WallPort{}
	}
	for _, p := range doc.WallPorts {
		if ports, ok := idx.WallPortsByFloor[p.FloorID]; ok {
			idx.WallPortsByFloor[p.FloorID] = append(ports, p)
		}
	}
	for _, ports := range idx.WallPortsByFloor {
		portname.Sort(ports)
	}
	return idx
}

func byID[T any](items []T, key func(T) string) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

// UserName resolves a user id to its display name.
func (idx *Indices) UserName(id string) (string, bool) {
	u, ok := idx.Users[id]
	return u.Name, ok
}

// SwitchName resolves a switch id to its display name.
func (idx *Indices) SwitchName(id string) (string, bool) {
	s, ok := idx.Switches[id]
	return s.Name, ok
}
