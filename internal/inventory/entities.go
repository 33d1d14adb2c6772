package inventory

import (
	"fmt"
	"strings"

	"go-portmap/internal/models"
)

// Kind names a top-level collection that supports generic delete.
type Kind string

const (
	KindFloors           Kind = "floors"
	KindWallPorts        Kind = "wallPorts"
	KindSwitches         Kind = "switches"
	KindSwitchCategories Kind = "switchCategories"
	KindUsers            Kind = "users"
	KindLayoutTemplates  Kind = "switchLayoutTemplates"
)

// Impact counts what a delete would remove or rewrite.
type Impact struct {
	WallPorts   int `json:"wallPorts"`
	Switches    int `json:"switches"`
	Connections int `json:"connections"`
	ClosetItems int `json:"closetItems"`
	Reassigned  int `json:"reassigned"`
}

// Cascades reports whether the delete removes anything besides the entity.
func (i Impact) Cascades() bool {
	return i.WallPorts+i.Switches+i.Connections+i.ClosetItems > 0
}

// Delete removes one entity and applies its cascade rule.
func (e *Engine) Delete(kind Kind, id string) (Impact, error) {
	var impact Impact
	err := e.mutate("delete."+string(kind), func(t *txn) error {
		var err error
		impact, err = t.delete(kind, id)
		return err
	})
	return impact, err
}

// DeleteImpact computes what Delete would do without changing anything.
func (e *Engine) DeleteImpact(kind Kind, id string) (Impact, error) {
	cur := e.Snapshot()
	t := &txn{doc: cur.Doc.Clone(), prev: cur, now: e.now(), newID: e.newID}
	return t.delete(kind, id)
}

func (t *txn) delete(kind Kind, id string) (Impact, error) {
	switch kind {
	case KindFloors:
		return t.deleteFloor(id)
	case KindSwitches:
		return t.deleteSwitch(id)
	case KindWallPorts:
		return t.deleteWallPort(id)
	case KindUsers:
		return t.deleteUser(id)
	case KindSwitchCategories:
		return t.deleteCategory(id)
	case KindLayoutTemplates:
		return t.deleteLayoutTemplate(id)
	default:
		return Impact{}, fmt.Errorf("%w: unknown collection %q", ErrInvalidInput, kind)
	}
}

func (t *txn) deleteFloor(id string) (Impact, error) {
	var impact Impact
	floor, ok := t.prev.Index.Floors[id]
	if !ok {
		return impact, notFound("floor", id)
	}
	t.doc.Floors, _ = removeWhere(t.doc.Floors, func(f models.Floor) bool { return f.ID == id })

	ports := make(map[string]bool)
	for _, p := range t.doc.WallPorts {
		if p.FloorID == id {
			ports[p.ID] = true
		}
	}
	switches := make(map[string]bool)
	for _, s := range t.doc.Switches {
		if s.FloorID == id {
			switches[s.ID] = true
		}
	}
	t.doc.WallPorts, impact.WallPorts = removeWhere(t.doc.WallPorts, func(p models.WallPort) bool { return ports[p.ID] })
	t.doc.Switches, impact.Switches = removeWhere(t.doc.Switches, func(s models.Switch) bool { return switches[s.ID] })
	t.doc.Connections, impact.Connections = removeWhere(t.doc.Connections, func(c models.Connection) bool {
		return ports[c.WallPortID] || switches[c.SwitchID]
	})
	impact.ClosetItems = len(t.doc.ClosetLayouts[id])
	delete(t.doc.ClosetLayouts, id)
	impact.ClosetItems += t.dropClosetSwitches(switches)

	t.activity("delete", fmt.Sprintf("Deleted floor '%s' with %d wall ports and %d switches.", floor.Name, impact.WallPorts, impact.Switches),
		map[string]any{"floorId": id, "connections": impact.Connections})
	return impact, nil
}

func (t *txn) deleteSwitch(id string) (Impact, error) {
	var impact Impact
	sw, ok := t.prev.Index.Switches[id]
	if !ok {
		return impact, notFound("switch", id)
	}
	t.doc.Switches, _ = removeWhere(t.doc.Switches, func(s models.Switch) bool { return s.ID == id })
	t.doc.Connections, impact.Connections = removeWhere(t.doc.Connections, func(c models.Connection) bool { return c.SwitchID == id })
	impact.ClosetItems = t.dropClosetSwitches(map[string]bool{id: true})

	t.activity("delete", fmt.Sprintf("Deleted switch '%s' and %d connections.", sw.Name, impact.Connections),
		map[string]any{"switchId": id})
	return impact, nil
}

// dropClosetSwitches removes closet items that show one of the switches.
func (t *txn) dropClosetSwitches(switches map[string]bool) int {
	if len(switches) == 0 {
		return 0
	}
	removed := 0
	for floorID, items := range t.doc.ClosetLayouts {
		kept, n := removeWhere(items, func(it models.ClosetItem) bool {
			return it.Type == models.ClosetSwitch && switches[it.SwitchID]
		})
		if n > 0 {
			t.doc.ClosetLayouts[floorID] = kept
			removed += n
		}
	}
	return removed
}

func (t *txn) deleteWallPort(id string) (Impact, error) {
	var impact Impact
	if _, ok := t.prev.Index.WallPorts[id]; !ok {
		return impact, notFound("wall port", id)
	}
	t.doc.WallPorts, _ = removeWhere(t.doc.WallPorts, func(p models.WallPort) bool { return p.ID == id })
	t.doc.Connections, impact.Connections = removeWhere(t.doc.Connections, func(c models.Connection) bool { return c.WallPortID == id })
	return impact, nil
}

func (t *txn) deleteUser(id string) (Impact, error) {
	var impact Impact
	if _, ok := t.prev.Index.Users[id]; !ok {
		return impact, notFound("user", id)
	}
	t.doc.Users, _ = removeWhere(t.doc.Users, func(u models.User) bool { return u.ID == id })
	for i := range t.doc.Connections {
		if t.doc.Connections[i].UserID == id {
			t.doc.Connections[i].UserID = ""
			impact.Reassigned++
		}
	}
	return impact, nil
}

func (t *txn) deleteCategory(id string) (Impact, error) {
	var impact Impact
	if id == models.DefaultCategoryID {
		return impact, fmt.Errorf("%w: the default category cannot be deleted", ErrInvalidInput)
	}
	if _, ok := t.prev.Index.SwitchCategories[id]; !ok {
		return impact, notFound("category", id)
	}
	t.doc.SwitchCategories, _ = removeWhere(t.doc.SwitchCategories, func(c models.SwitchCategory) bool { return c.ID == id })
	for i := range t.doc.Switches {
		if t.doc.Switches[i].CategoryID == id {
			t.doc.Switches[i].CategoryID = models.DefaultCategoryID
			impact.Reassigned++
		}
	}
	return impact, nil
}

func (t *txn) deleteLayoutTemplate(id string) (Impact, error) {
	var impact Impact
	if _, ok := t.prev.Index.LayoutTemplates[id]; !ok {
		return impact, notFound("layout template", id)
	}
	t.doc.SwitchLayoutTemplates, _ = removeWhere(t.doc.SwitchLayoutTemplates, func(l models.SwitchLayoutTemplate) bool { return l.ID == id })
	for i := range t.doc.Switches {
		if t.doc.Switches[i].LayoutTemplateID == id {
			t.doc.Switches[i].LayoutTemplateID = models.DefaultLayoutTemplateID
			impact.Reassigned++
		}
	}
	return impact, nil
}

// Floors

func (e *Engine) AddFloor(name string) (models.Floor, error) {
	var f models.Floor
	err := e.mutate("addFloor", func(t *txn) error {
		n, err := requireName("floor", name)
		if err != nil {
			return err
		}
		f = models.Floor{ID: t.newID("f"), Name: n}
		t.doc.Floors = append(t.doc.Floors, f)
		return nil
	})
	return f, err
}

func (e *Engine) RenameFloor(id, name string) error {
	return e.mutate("renameFloor", func(t *txn) error {
		n, err := requireName("floor", name)
		if err != nil {
			return err
		}
		i := indexOf(t.doc.Floors, func(f models.Floor) bool { return f.ID == id })
		if i < 0 {
			return notFound("floor", id)
		}
		t.doc.Floors[i].Name = n
		return nil
	})
}

// Switches

// SwitchFields carries the editable switch attributes. Nil fields are left
// unchanged on update.
type SwitchFields struct {
	Name             *string `json:"name"`
	IP               *string `json:"ip"`
	PortCount        *int    `json:"portCount"`
	FloorID          *string `json:"floorId"`
	CategoryID       *string `json:"categoryId"`
	LayoutTemplateID *string `json:"layoutTemplateId"`
}

func (t *txn) applySwitch(sw *models.Switch, f SwitchFields) error {
	if f.Name != nil {
		n, err := requireName("switch", *f.Name)
		if err != nil {
			return err
		}
		sw.Name = n
	}
	if f.IP != nil {
		sw.IP = strings.TrimSpace(*f.IP)
	}
	if f.PortCount != nil {
		if *f.PortCount < 1 {
			return fmt.Errorf("%w: port count must be positive", ErrInvalidInput)
		}
		for _, c := range t.doc.Connections {
			if c.SwitchID == sw.ID && c.SwitchPort > *f.PortCount {
				return fmt.Errorf("%w: port %d on %s is still connected", ErrPortOutOfRange, c.SwitchPort, sw.Name)
			}
		}
		sw.PortCount = *f.PortCount
	}
	if f.FloorID != nil {
		if _, ok := t.prev.Index.Floors[*f.FloorID]; !ok {
			return notFound("floor", *f.FloorID)
		}
		sw.FloorID = *f.FloorID
	}
	if f.CategoryID != nil {
		if _, ok := t.prev.Index.SwitchCategories[*f.CategoryID]; !ok {
			return notFound("category", *f.CategoryID)
		}
		sw.CategoryID = *f.CategoryID
	}
	if f.LayoutTemplateID != nil {
		if _, ok := t.prev.Index.LayoutTemplates[*f.LayoutTemplateID]; !ok {
			return notFound("layout template", *f.LayoutTemplateID)
		}
		sw.LayoutTemplateID = *f.LayoutTemplateID
	}
	return nil
}

// AddSwitch creates a switch. Name, port count and floor are required.
func (e *Engine) AddSwitch(f SwitchFields) (models.Switch, error) {
	var sw models.Switch
	err := e.mutate("addSwitch", func(t *txn) error {
		if f.Name == nil || f.PortCount == nil || f.FloorID == nil {
			return fmt.Errorf("%w: name, portCount and floorId are required", ErrInvalidInput)
		}
		sw = models.Switch{
			ID:               t.newID("sw"),
			CategoryID:       models.DefaultCategoryID,
			LayoutTemplateID: models.DefaultLayoutTemplateID,
		}
		if err := t.applySwitch(&sw, f); err != nil {
			return err
		}
		t.doc.Switches = append(t.doc.Switches, sw)
		return nil
	})
	return sw, err
}

func (e *Engine) UpdateSwitch(id string, f SwitchFields) (models.Switch, error) {
	var sw models.Switch
	err := e.mutate("updateSwitch", func(t *txn) error {
		i := indexOf(t.doc.Switches, func(s models.Switch) bool { return s.ID == id })
		if i < 0 {
			return notFound("switch", id)
		}
		if err := t.applySwitch(&t.doc.Switches[i], f); err != nil {
			return err
		}
		sw = t.doc.Switches[i]
		return nil
	})
	return sw, err
}

// Users

func (e *Engine) AddUser(name string) (models.User, error) {
	var u models.User
	err := e.mutate("addUser", func(t *txn) error {
		n, err := requireName("user", name)
		if err != nil {
			return err
		}
		u = models.User{ID: t.newID("u"), Name: n}
		t.doc.Users = append(t.doc.Users, u)
		return nil
	})
	return u, err
}

// RenameUser changes a display name. References keep pointing at the id.
func (e *Engine) RenameUser(id, name string) error {
	return e.mutate("renameUser", func(t *txn) error {
		n, err := requireName("user", name)
		if err != nil {
			return err
		}
		i := indexOf(t.doc.Users, func(u models.User) bool { return u.ID == id })
		if i < 0 {
			return notFound("user", id)
		}
		old := t.doc.Users[i].Name
		if old == n {
			return nil
		}
		t.doc.Users[i].Name = n
		t.activity("info", fmt.Sprintf("Renamed user '%s' to '%s'.", old, n), map[string]any{"userId": id})
		return nil
	})
}

// Categories

func (e *Engine) AddCategory(name, color string) (models.SwitchCategory, error) {
	var c models.SwitchCategory
	err := e.mutate("addCategory", func(t *txn) error {
		n, err := requireName("category", name)
		if err != nil {
			return err
		}
		c = models.SwitchCategory{ID: t.newID("cat"), Name: n, Color: color}
		t.doc.SwitchCategories = append(t.doc.SwitchCategories, c)
		return nil
	})
	return c, err
}

func (e *Engine) UpdateCategory(id, name, color string) error {
	return e.mutate("updateCategory", func(t *txn) error {
		n, err := requireName("category", name)
		if err != nil {
			return err
		}
		i := indexOf(t.doc.SwitchCategories, func(c models.SwitchCategory) bool { return c.ID == id })
		if i < 0 {
			return notFound("category", id)
		}
		t.doc.SwitchCategories[i].Name = n
		if color != "" {
			t.doc.SwitchCategories[i].Color = color
		}
		return nil
	})
}

// Layout templates

func validateLayoutConfig(c models.LayoutConfig) error {
	switch c.Type {
	case models.LayoutOddEven, models.LayoutCustom:
		return nil
	case models.LayoutSequential:
		if c.PortsPerRow < 0 {
			return fmt.Errorf("%w: portsPerRow must not be negative", ErrInvalidInput)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown layout type %q", ErrInvalidInput, c.Type)
	}
}

// AddLayoutTemplate stores a new template. An empty ID gets a generated one.
func (e *Engine) AddLayoutTemplate(tmpl models.SwitchLayoutTemplate) (models.SwitchLayoutTemplate, error) {
	err := e.mutate("addLayoutTemplate", func(t *txn) error {
		n, err := requireName("layout template", tmpl.Name)
		if err != nil {
			return err
		}
		if err := validateLayoutConfig(tmpl.Config); err != nil {
			return err
		}
		tmpl.Name = n
		if tmpl.ID == "" {
			tmpl.ID = t.newID("tpl")
		}
		if _, exists := t.prev.Index.LayoutTemplates[tmpl.ID]; exists {
			return fmt.Errorf("%w: layout template %q", ErrDuplicate, tmpl.ID)
		}
		if tmpl.Type == "" {
			tmpl.Type = "manual"
		}
		t.doc.SwitchLayoutTemplates = append(t.doc.SwitchLayoutTemplates, tmpl)
		return nil
	})
	return tmpl, err
}

func (e *Engine) UpdateLayoutTemplate(tmpl models.SwitchLayoutTemplate) error {
	return e.mutate("updateLayoutTemplate", func(t *txn) error {
		if err := validateLayoutConfig(tmpl.Config); err != nil {
			return err
		}
		n, err := requireName("layout template", tmpl.Name)
		if err != nil {
			return err
		}
		tmpl.Name = n
		i := indexOf(t.doc.SwitchLayoutTemplates, func(l models.SwitchLayoutTemplate) bool { return l.ID == tmpl.ID })
		if i < 0 {
			return notFound("layout template", tmpl.ID)
		}
		t.doc.SwitchLayoutTemplates[i] = tmpl
		return nil
	})
}

// VLAN colors

// UpsertVlanColor sets the color of a VLAN label, adding it when new.
func (e *Engine) UpsertVlanColor(vlanID, color string) error {
	return e.mutate("upsertVlanColor", func(t *txn) error {
		id := strings.TrimSpace(vlanID)
		if id == "" || color == "" {
			return fmt.Errorf("%w: vlanId and color are required", ErrInvalidInput)
		}
		i := indexOf(t.doc.VlanColors, func(v models.VlanColor) bool { return v.VlanID == id })
		if i < 0 {
			t.doc.VlanColors = append(t.doc.VlanColors, models.VlanColor{VlanID: id, Color: color})
			return nil
		}
		t.doc.VlanColors[i].Color = color
		return nil
	})
}

func (e *Engine) DeleteVlanColor(vlanID string) error {
	return e.mutate("deleteVlanColor", func(t *txn) error {
		var n int
		t.doc.VlanColors, n = removeWhere(t.doc.VlanColors, func(v models.VlanColor) bool { return v.VlanID == vlanID })
		if n == 0 {
			return notFound("vlan color", vlanID)
		}
		return nil
	})
}

// Columns

// SetColumns replaces the table column configuration.
func (e *Engine) SetColumns(cols []models.Column) error {
	return e.mutate("setColumns", func(t *txn) error {
		seen := make(map[string]bool, len(cols))
		for _, c := range cols {
			if c.ID == "" || c.Label == "" {
				return fmt.Errorf("%w: column id and label are required", ErrInvalidInput)
			}
			if seen[c.ID] {
				return fmt.Errorf("%w: column %q", ErrDuplicate, c.ID)
			}
			seen[c.ID] = true
		}
		t.doc.Columns = append([]models.Column{}, cols...)
		return nil
	})
}

// AddCustomColumn appends an editable text column whose values are kept in
// each connection's customData under the column id.
func (e *Engine) AddCustomColumn(label string) (models.Column, error) {
	var col models.Column
	err := e.mutate("addCustomColumn", func(t *txn) error {
		l, err := requireName("column", label)
		if err != nil {
			return err
		}
		col = models.Column{ID: t.newID("custom"), Label: l, Visible: true, IsCustom: true, IsEditable: true, Type: "text"}
		t.doc.Columns = append(t.doc.Columns, col)
		return nil
	})
	return col, err
}
