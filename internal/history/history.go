// Package history renders connection changes as human-readable clauses and
// maintains the capped, newest-first audit logs.
package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go-portmap/internal/models"
)

const (
	Created          = "Connection created"
	LegacyMigrated   = "Legacy connection migrated"
	unassignedUser   = "Unassigned"
	unassignedSwitch = "None"
)

// Names resolves referenced ids to display names at diff time.
type Names interface {
	UserName(id string) (string, bool)
	SwitchName(id string) (string, bool)
}

type field struct {
	key     string
	label   string
	value   func(c *models.Connection) string
	resolve func(n Names, id string) string
}

var fields = []field{
	{
		key: "switchId", label: "switch",
		value: func(c *models.Connection) string { return c.SwitchID },
		resolve: func(n Names, id string) string {
			if name, ok := n.SwitchName(id); ok && id != "" {
				return name
			}
			return unassignedSwitch
		},
	},
	{key: "switchPort", value: func(c *models.Connection) string {
		if c.SwitchPort == 0 {
			return ""
		}
		return strconv.Itoa(c.SwitchPort)
	}},
	{key: "connectionType", value: func(c *models.Connection) string { return string(c.ConnectionType) }},
	{key: "vlan", value: func(c *models.Connection) string { return c.Vlan }},
	{key: "room", value: func(c *models.Connection) string { return c.Room }},
	{
		key: "userId", label: "user",
		value: func(c *models.Connection) string { return c.UserID },
		resolve: func(n Names, id string) string {
			if name, ok := n.UserName(id); ok && id != "" {
				return name
			}
			return unassignedUser
		},
	},
	{key: "ipAddress", value: func(c *models.Connection) string { return c.IPAddress }},
	{key: "hasLink", value: func(c *models.Connection) string { return strconv.FormatBool(c.HasLink) }},
	{key: "deviceDescription", value: func(c *models.Connection) string { return c.DeviceDescription }},
}

func clause(label, from, to string) string {
	return fmt.Sprintf("%s from '%s' to '%s'", label, from, to)
}

// Diff lists one clause per field that differs between old and updated.
// With names set, userId and switchId are rendered by name; with nil names
// every field is a plain value diff.
func Diff(old, updated *models.Connection, names Names) []string {
	var clauses []string
	for _, f := range fields {
		from, to := f.value(old), f.value(updated)
		if from == to {
			continue
		}
		label := f.key
		if names != nil && f.resolve != nil {
			from, to = f.resolve(names, from), f.resolve(names, to)
			if from == to {
				continue
			}
			label = f.label
		}
		clauses = append(clauses, clause(label, from, to))
	}
	return append(clauses, diffCustom(old.CustomData, updated.CustomData)...)
}

func diffCustom(old, updated map[string]string) []string {
	keys := make(map[string]struct{}, len(old)+len(updated))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range updated {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var clauses []string
	for _, k := range sorted {
		if old[k] != updated[k] {
			clauses = append(clauses, clause(k, old[k], updated[k]))
		}
	}
	return clauses
}

func Updated(clauses []string) string {
	return "Updated: " + strings.Join(clauses, ", ")
}

func BulkEdited(clauses []string) string {
	return "Bulk edit: " + strings.Join(clauses, ", ")
}

func BulkCreated(fieldNames []string) string {
	return "Bulk edit: Connection created with " + strings.Join(fieldNames, ", ")
}

// Prepend returns a new slice with e first followed by list, keeping at most
// max entries. max <= 0 means uncapped.
func Prepend[T any](list []T, e T, max int) []T {
	n := len(list) + 1
	if max > 0 && n > max {
		n = max
	}
	out := make([]T, 0, n)
	out = append(out, e)
	return append(out, list[:n-1]...)
}

// Trim drops the oldest entries beyond max.
func Trim[T any](list []T, max int) []T {
	if len(list) <= max {
		return list
	}
	return list[:max]
}
