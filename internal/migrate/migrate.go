// Package migrate turns a stored document of any earlier schema version into
// the current shape. Absent fields mean "not yet set" and get defaults; legacy
// keys are dropped. Running it again on its own output changes nothing.
package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-portmap/internal/history"
	"go-portmap/internal/models"
)

var ErrMalformed = errors.New("malformed document")

var legacyColumns = map[string]bool{"asset": true, "assetId": true}

type legacyWallPort struct {
	models.WallPort
	PortNumber json.RawMessage `json:"portNumber"`
}

type legacyConnection struct {
	models.Connection
	SwitchPort json.RawMessage        `json:"switchPort"`
	IPAddress  *string                `json:"ipAddress"`
	HasLink    *bool                  `json:"hasLink"`
	History    *[]models.HistoryEntry `json:"history"`
}

type legacyDocument struct {
	Floors                []models.Floor                 `json:"floors"`
	WallPorts             []legacyWallPort               `json:"wallPorts"`
	Switches              []models.Switch                `json:"switches"`
	SwitchCategories      []models.SwitchCategory        `json:"switchCategories"`
	Connections           []legacyConnection             `json:"connections"`
	Users                 []models.User                  `json:"users"`
	Columns               []models.Column                `json:"columns"`
	ActivityLog           []models.ActivityEntry         `json:"activityLog"`
	SwitchPortHistory     []models.SwitchPortEvent       `json:"switchPortHistory"`
	SwitchLayoutTemplates []models.SwitchLayoutTemplate  `json:"switchLayoutTemplates"`
	VlanColors            []models.VlanColor             `json:"vlanColors"`
	ClosetLayouts         map[string][]models.ClosetItem `json:"closetLayouts"`
}

// Decode parses a stored document and backfills it. now (Unix ms) stamps
// history entries created for connections that never had one.
func Decode(data []byte, now int64) (*models.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}
	var raw legacyDocument
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &models.Document{
		Floors:                raw.Floors,
		Switches:              raw.Switches,
		SwitchCategories:      raw.SwitchCategories,
		Users:                 raw.Users,
		Columns:               raw.Columns,
		ActivityLog:           raw.ActivityLog,
		SwitchPortHistory:     raw.SwitchPortHistory,
		SwitchLayoutTemplates: raw.SwitchLayoutTemplates,
		VlanColors:            raw.VlanColors,
		ClosetLayouts:         raw.ClosetLayouts,
	}
	if raw.WallPorts != nil {
		doc.WallPorts = make([]models.WallPort, 0, len(raw.WallPorts))
		for _, lp := range raw.WallPorts {
			wp := lp.WallPort
			wp.PortNumber = looseString(lp.PortNumber)
			doc.WallPorts = append(doc.WallPorts, wp)
		}
	}
	if raw.Connections != nil {
		doc.Connections = make([]models.Connection, 0, len(raw.Connections))
		for _, lc := range raw.Connections {
			doc.Connections = append(doc.Connections, upgradeConnection(lc, now))
		}
	}

	Backfill(doc, now)
	return doc, nil
}

func upgradeConnection(lc legacyConnection, now int64) models.Connection {
	c := lc.Connection
	c.SwitchPort = looseInt(lc.SwitchPort)
	c.IPAddress = models.DHCP
	if lc.IPAddress != nil {
		c.IPAddress = *lc.IPAddress
	}
	c.HasLink = true
	if lc.HasLink != nil {
		c.HasLink = *lc.HasLink
	}
	if lc.History != nil {
		c.History = *lc.History
		if c.History == nil {
			c.History = []models.HistoryEntry{}
		}
	} else {
		c.History = []models.HistoryEntry{{Timestamp: now, Message: history.LegacyMigrated}}
	}
	return c
}

// looseString accepts a JSON string or number.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// looseInt accepts a JSON number or a numeric string; anything else is 0.
func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	if v, err := strconv.Atoi(strings.TrimSpace(looseString(raw))); err == nil {
		return v
	}
	return 0
}

// Backfill fills defaults on an already typed document in place.
func Backfill(doc *models.Document, now int64) {
	if doc.Floors == nil {
		doc.Floors = []models.Floor{}
	}
	if doc.WallPorts == nil {
		doc.WallPorts = []models.WallPort{}
	}
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.SwitchCategories == nil {
		doc.SwitchCategories = models.DefaultSwitchCategories()
	}
	if doc.VlanColors == nil {
		doc.VlanColors = models.DefaultVlanColors()
	}
	if doc.SwitchLayoutTemplates == nil {
		doc.SwitchLayoutTemplates = models.DefaultLayoutTemplates()
	}
	if doc.ClosetLayouts == nil {
		doc.ClosetLayouts = map[string][]models.ClosetItem{}
	}

	if doc.Columns == nil {
		doc.Columns = models.DefaultColumns()
	} else {
		cols := make([]models.Column, 0, len(doc.Columns))
		for _, c := range doc.Columns {
			if !legacyColumns[c.ID] {
				cols = append(cols, c)
			}
		}
		doc.Columns = cols
	}

	if doc.Switches == nil {
		doc.Switches = []models.Switch{}
	}
	for i := range doc.Switches {
		if doc.Switches[i].CategoryID == "" {
			doc.Switches[i].CategoryID = models.DefaultCategoryID
		}
	}

	if doc.Connections == nil {
		doc.Connections = []models.Connection{}
	}
	for i := range doc.Connections {
		c := &doc.Connections[i]
		if c.ConnectionType == "" {
			c.ConnectionType = models.Patched
		}
		if c.History == nil {
			c.History = []models.HistoryEntry{{Timestamp: now, Message: history.LegacyMigrated}}
		}
	}

	if doc.ActivityLog == nil {
		doc.ActivityLog = []models.ActivityEntry{}
	}
	doc.ActivityLog = history.Trim(doc.ActivityLog, models.MaxActivityLog)
	for i := range doc.ActivityLog {
		e := &doc.ActivityLog[i]
		if e.ID == "" {
			e.ID = fmt.Sprintf("log-%d-%d", e.Timestamp, i)
		}
		if e.Type == "" {
			e.Type = "info"
		}
	}

	if doc.SwitchPortHistory == nil {
		doc.SwitchPortHistory = []models.SwitchPortEvent{}
	}
	doc.SwitchPortHistory = history.Trim(doc.SwitchPortHistory, models.MaxSwitchPortHistory)
	for i := range doc.SwitchPortHistory {
		if doc.SwitchPortHistory[i].ID == "" {
			doc.SwitchPortHistory[i].ID = fmt.Sprintf("sph-%d-%d", doc.SwitchPortHistory[i].Timestamp, i)
		}
	}
}
