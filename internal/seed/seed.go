package seed

import (
	"fmt"
	"os"

	"go-portmap/internal/migrate"
	"go-portmap/internal/models"
	"go-portmap/internal/portname"
)

const day = int64(86400000)

// Default returns the dataset a fresh installation starts with.
func Default(now int64) *models.Document {
	ports := make([]models.WallPort, 0, 24)
	for i := 1; i <= 24; i++ {
		label := portname.Pad("", i)
		ports = append(ports, models.WallPort{ID: portname.WallPortID("f1", label), FloorID: "f1", PortNumber: label})
	}

	doc := &models.Document{
		Floors:    []models.Floor{{ID: "f1", Name: "Floor 1"}, {ID: "f4", Name: "Floor 4"}},
		WallPorts: ports,
		Switches: []models.Switch{
			{ID: "sw1", Name: "F1-Access-A", IP: "10.0.1.200", PortCount: 48, FloorID: "f1", CategoryID: "cat1"},
			{ID: "sw2", Name: "F4-Core-A", IP: "10.0.4.200", PortCount: 24, FloorID: "f4", CategoryID: "cat2"},
			{ID: "sw3", Name: "F4-Core-B", IP: "10.0.4.201", PortCount: 24, FloorID: "f4", CategoryID: "cat2"},
		},
		SwitchCategories: models.DefaultSwitchCategories(),
		Connections: []models.Connection{
			{
				ID: "c-1", WallPortID: "f1-p001", SwitchID: "sw1", SwitchPort: 1, Vlan: "100", Room: "101",
				UserID: "u1", IPAddress: "10.0.1.55", HasLink: true, ConnectionType: models.Patched,
				History: []models.HistoryEntry{{Timestamp: now - day, Message: "Connection created"}},
			},
			{
				ID: "c-2", WallPortID: "f1-p002", SwitchID: "sw1", SwitchPort: 2, Vlan: "100", Room: "102",
				UserID: "u2", IPAddress: models.DHCP, HasLink: false, ConnectionType: models.Patched,
				History: []models.HistoryEntry{{Timestamp: now - day/2, Message: "Connection created"}},
			},
		},
		Users:                 []models.User{{ID: "u1", Name: "John Doe"}, {ID: "u2", Name: "Jane Smith"}},
		Columns:               models.DefaultColumns(),
		ActivityLog:           []models.ActivityEntry{{ID: "log-init", Timestamp: now, Message: "Application initialized.", Type: "info"}},
		SwitchPortHistory:     []models.SwitchPortEvent{},
		SwitchLayoutTemplates: models.DefaultLayoutTemplates(),
		VlanColors:            models.DefaultVlanColors(),
		ClosetLayouts:         map[string][]models.ClosetItem{},
	}
	return doc
}

// LoadFile reads a seed document from a JSON file and migrates it.
func LoadFile(path string, now int64) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := migrate.Decode(data, now)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return doc, nil
}

// Func builds the seed document used when nothing is stored yet.
type Func func(now int64) *models.Document

// FromFile returns a Func that prefers the file at path and falls back to
// Default when path is empty or unreadable.
func FromFile(path string, onErr func(error)) Func {
	return func(now int64) *models.Document {
		if path == "" {
			return Default(now)
		}
		doc, err := LoadFile(path, now)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return Default(now)
		}
		return doc
	}
}
