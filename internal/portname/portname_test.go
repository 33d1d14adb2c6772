package portname

import (
	"testing"

	"go-portmap/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"010", "9", 1},
		{"01-2", "11", 1},
		{"5", "A-3", -1},
		{"A-3", "5", 1},
		{"A-3", "B-1", -1},
		{"123456789012345678901234567890", "9", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := Compare(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestSort(t *testing.T) {
	ports := []models.WallPort{
		{ID: "a", PortNumber: "B-2"},
		{ID: "b", PortNumber: "010"},
		{ID: "c", PortNumber: "2"},
		{ID: "d", PortNumber: "A-1"},
		{ID: "e", PortNumber: "001"},
	}
	Sort(ports)

	var got []string
	for _, p := range ports {
		got = append(got, p.PortNumber)
	}
	assert.Equal(t, []string{"001", "2", "010", "A-1", "B-2"}, got)
}

func TestPadAndWallPortID(t *testing.T) {
	assert.Equal(t, "A007", Pad("A", 7))
	assert.Equal(t, "124", Pad("", 124))
	assert.Equal(t, "f1-p007", WallPortID("f1", Pad("", 7)))
}
