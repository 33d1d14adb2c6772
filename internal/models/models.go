package models

const (
	MaxActivityLog       = 100
	MaxSwitchPortHistory = 200

	DefaultCategoryID       = "cat1"
	DefaultLayoutTemplateID = "odd_even"
	CustomLayoutTemplateID  = "custom"
	DHCP                    = "DHCP"
)

type ConnectionType string

const (
	Patched     ConnectionType = "patched"
	LocalDevice ConnectionType = "local_device"
)

type Floor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type WallPort struct {
	ID         string `json:"id"`
	FloorID    string `json:"floorId"`
	PortNumber string `json:"portNumber"` // display label, "012" or "A-3"
	IsVirtual  bool   `json:"isVirtual"`
	IsPinned   bool   `json:"isPinned"`
}

type SwitchCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CustomLayout struct {
	Rows [][]int `json:"rows"`
}

type Switch struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	IP               string        `json:"ip"`
	PortCount        int           `json:"portCount"`
	FloorID          string        `json:"floorId"`
	CategoryID       string        `json:"categoryId"`
	IsPinned         bool          `json:"isPinned"`
	LayoutTemplateID string        `json:"layoutTemplateId,omitempty"`
	CustomLayout     *CustomLayout `json:"customLayout,omitempty"`
}

type LayoutType string

const (
	LayoutOddEven    LayoutType = "odd_even"
	LayoutSequential LayoutType = "sequential"
	LayoutCustom     LayoutType = "custom"
)

type LayoutConfig struct {
	Type        LayoutType `json:"type"`
	PortsPerRow int        `json:"portsPerRow,omitempty"`
	CustomRows  [][]int    `json:"customRows,omitempty"`
}

type SwitchLayoutTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        string       `json:"type"` // "automatic" or "manual"
	Config      LayoutConfig `json:"config"`
}

type HistoryEntry struct {
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

type Connection struct {
	ID                string            `json:"id"`
	WallPortID        string            `json:"wallPortId"`
	SwitchID          string            `json:"switchId,omitempty"`
	SwitchPort        int               `json:"switchPort,omitempty"`
	ConnectionType    ConnectionType    `json:"connectionType"`
	Vlan              string            `json:"vlan,omitempty"`
	Room              string            `json:"room,omitempty"`
	UserID            string            `json:"userId,omitempty"`
	IPAddress         string            `json:"ipAddress"`
	HasLink           bool              `json:"hasLink"`
	DeviceDescription string            `json:"deviceDescription,omitempty"`
	CustomData        map[string]string `json:"customData,omitempty"`
	History           []HistoryEntry    `json:"history"`
}

// OccupiesSwitchPort reports whether c claims a numbered port on a switch.
func (c Connection) OccupiesSwitchPort() bool {
	return c.ConnectionType == Patched && c.SwitchID != "" && c.SwitchPort > 0
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VlanColor struct {
	VlanID string `json:"vlanId"`
	Color  string `json:"color"`
}

type ActivityEntry struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type PortAction string

const (
	ActionConnected    PortAction = "connected"
	ActionDisconnected PortAction = "disconnected"
	ActionModified     PortAction = "modified"
)

type SwitchPortEvent struct {
	ID         string         `json:"id"`
	Timestamp  int64          `json:"timestamp"`
	SwitchID   string         `json:"switchId"`
	PortNumber int            `json:"portNumber"`
	Action     PortAction     `json:"action"`
	Details    string         `json:"details"`
	UserID     string         `json:"userId,omitempty"`
	WallPortID string         `json:"wallPortId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type ClosetItemType string

const (
	ClosetPatchPanel ClosetItemType = "patchPanel"
	ClosetSwitch     ClosetItemType = "switch"
)

type ClosetItem struct {
	ID          string         `json:"id"`
	Type        ClosetItemType `json:"type"`
	SwitchID    string         `json:"switchId,omitempty"`
	StartPort   int            `json:"startPort,omitempty"`
	EndPort     int            `json:"endPort,omitempty"`
	PortsPerRow int            `json:"portsPerRow,omitempty"`
}

type Column struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Visible    bool   `json:"visible"`
	IsCustom   bool   `json:"isCustom"`
	IsEditable bool   `json:"isEditable"`
	Type       string `json:"type,omitempty"` // "text" or "select"
	OptionsKey string `json:"optionsKey,omitempty"`
}

// Document is the whole persisted inventory. A published Document is never
// written to again; mutations work on a Clone.
type Document struct {
	Floors                []Floor                 `json:"floors"`
	WallPorts             []WallPort              `json:"wallPorts"`
	Switches              []Switch                `json:"switches"`
	SwitchCategories      []SwitchCategory        `json:"switchCategories"`
	Connections           []Connection            `json:"connections"`
	Users                 []User                  `json:"users"`
	Columns               []Column                `json:"columns"`
	ActivityLog           []ActivityEntry         `json:"activityLog"`
	SwitchPortHistory     []SwitchPortEvent       `json:"switchPortHistory"`
	SwitchLayoutTemplates []SwitchLayoutTemplate  `json:"switchLayoutTemplates"`
	VlanColors            []VlanColor             `json:"vlanColors"`
	ClosetLayouts         map[string][]ClosetItem `json:"closetLayouts"`
}

// Clone copies every collection. Element values are shared only where they
// are themselves never modified in place (history slices, layout rows).
func (d *Document) Clone() *Document {
	out := &Document{
		Floors:                cloneSlice(d.Floors),
		WallPorts:             cloneSlice(d.WallPorts),
		Switches:              cloneSlice(d.Switches),
		SwitchCategories:      cloneSlice(d.SwitchCategories),
		Connections:           cloneSlice(d.Connections),
		Users:                 cloneSlice(d.Users),
		Columns:               cloneSlice(d.Columns),
		ActivityLog:           cloneSlice(d.ActivityLog),
		SwitchPortHistory:     cloneSlice(d.SwitchPortHistory),
		SwitchLayoutTemplates: cloneSlice(d.SwitchLayoutTemplates),
		VlanColors:            cloneSlice(d.VlanColors),
		ClosetLayouts:         make(map[string][]ClosetItem, len(d.ClosetLayouts)),
	}
	for floorID, items := range d.ClosetLayouts {
		out.ClosetLayouts[floorID] = cloneSlice(items)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
