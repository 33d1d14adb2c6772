package inventory

import (
	"testing"

	"go-portmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchLayout(t *testing.T) {
	e := newEngine(t)

	rows, err := e.SwitchLayout("sw1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []int{1, 3, 5, 7, 9, 11, 13, 15, 17, 19, 21, 23}, rows[0])

	require.NoError(t, e.SetSwitchLayout("sw1", "sequential", nil))
	rows, err = e.SwitchLayout("sw1")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, {13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24}}, rows)

	_, err = e.SwitchLayout("sw9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSwitchLayout_Custom(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.SetSwitchLayout("sw1", models.CustomLayoutTemplateID, [][]int{{1, 2}, {}, {24}}))

	rows, err := e.SwitchLayout("sw1")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {24}}, rows)

	assert.ErrorIs(t, e.SetSwitchLayout("sw1", models.CustomLayoutTemplateID, [][]int{{25}}), ErrPortOutOfRange)
	assert.ErrorIs(t, e.SetSwitchLayout("sw1", models.CustomLayoutTemplateID, [][]int{{1}, {1}}), ErrDuplicate)
	assert.ErrorIs(t, e.SetSwitchLayout("sw1", "nope", nil), ErrNotFound)
	assert.ErrorIs(t, e.SetSwitchLayout("sw9", "", nil), ErrNotFound)
}

func TestClosetLayout(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.SetClosetLayout("f1", []models.ClosetItem{
		{Type: models.ClosetPatchPanel, StartPort: 1, EndPort: 12, PortsPerRow: 6},
		{Type: models.ClosetSwitch, SwitchID: "sw1"},
	}))

	rows, err := e.ClosetLayout("f1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEmpty(t, rows[0].Item.ID)
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11, 12}}, rows[0].Rows)
	assert.Len(t, rows[1].Rows, 2)

	err = e.SetClosetLayout("f1", []models.ClosetItem{{Type: models.ClosetSwitch, SwitchID: "sw9"}})
	assert.ErrorIs(t, err, ErrNotFound)
	err = e.SetClosetLayout("f1", []models.ClosetItem{{Type: models.ClosetPatchPanel, StartPort: 5, EndPort: 2}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = e.SetClosetLayout("f1", []models.ClosetItem{{Type: "shelf"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ClosetLayout("f9")
	assert.ErrorIs(t, err, ErrNotFound)
}
