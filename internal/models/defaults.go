package models

func DefaultSwitchCategories() []SwitchCategory {
	return []SwitchCategory{
		{ID: "cat1", Name: "Access Switches", Color: "#10b981"},
		{ID: "cat2", Name: "Core Infrastructure", Color: "#3b82f6"},
		{ID: "cat3", Name: "VoIP", Color: "#f59e0b"},
		{ID: "cat4", Name: "Security", Color: "#ef4444"},
	}
}

func DefaultVlanColors() []VlanColor {
	return []VlanColor{
		{VlanID: "100", Color: "#34d399"},
		{VlanID: "200", Color: "#60a5fa"},
		{VlanID: "300", Color: "#f59e0b"},
	}
}

func DefaultColumns() []Column {
	return []Column{
		{ID: "portNumber", Label: "Port", Visible: true},
		{ID: "status", Label: "Status / Switch", Visible: true},
		{ID: "user", Label: "Assigned User", Visible: true, IsEditable: true, Type: "select", OptionsKey: "users"},
		{ID: "ipAddress", Label: "IP Address", Visible: true, IsEditable: true, Type: "text"},
		{ID: "switchPort", Label: "Switch Port", Visible: true},
		{ID: "vlan", Label: "VLAN", Visible: true, IsEditable: true, Type: "text"},
		{ID: "room", Label: "Room", Visible: true, IsEditable: true, Type: "text"},
	}
}

func DefaultLayoutTemplates() []SwitchLayoutTemplate {
	return []SwitchLayoutTemplate{
		{
			ID: "odd_even", Name: "Odd/Even", Type: "automatic",
			Description: "Odd ports on the top row, even ports on the bottom row",
			Config:      LayoutConfig{Type: LayoutOddEven},
		},
		{
			ID: "sequential", Name: "Sequential", Type: "automatic",
			Description: "Ports in order, 12 per row",
			Config:      LayoutConfig{Type: LayoutSequential, PortsPerRow: 12},
		},
		{
			ID: "custom", Name: "Custom", Type: "manual",
			Description: "User-defined rows",
			Config:      LayoutConfig{Type: LayoutCustom},
		},
	}
}
