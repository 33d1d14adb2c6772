package portname

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go-portmap/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var numericLabel = regexp.MustCompile(`^\d+$`)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

// numeric reports the digits of a label once dashes are removed, so "01-2"
// orders as 12 while "A-3" stays textual.
func numeric(label string) (string, bool) {
	s := strings.ReplaceAll(label, "-", "")
	if !numericLabel.MatchString(s) {
		return "", false
	}
	return strings.TrimLeft(s, "0"), true
}

// Compare orders wall port labels: numeric labels first by integer value,
// then everything else by locale collation.
func Compare(a, b string) int {
	an, aNum := numeric(a)
	bn, bNum := numeric(b)
	switch {
	case aNum && bNum:
		if len(an) != len(bn) {
			if len(an) < len(bn) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(an, bn); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	}

	collatorMu.Lock()
	c := collator.CompareString(a, b)
	collatorMu.Unlock()
	if c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func Less(a, b string) bool { return Compare(a, b) < 0 }

// Sort orders ports in place by label.
func Sort(ports []models.WallPort) {
	sort.SliceStable(ports, func(i, j int) bool {
		return Less(ports[i].PortNumber, ports[j].PortNumber)
	})
}

// Normalize trims a user-entered label.
func Normalize(label string) string {
	return strings.TrimSpace(label)
}

// Pad builds the batch label for port n: prefix followed by a 3-digit number.
func Pad(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// WallPortID builds the id of a built-in seed port. Ports added at runtime get
// generated ids.
func WallPortID(floorID, label string) string {
	return floorID + "-p" + label
}
