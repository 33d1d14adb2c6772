package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-portmap/internal/inventory"
	"go-portmap/internal/metrics"
	"go-portmap/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixture() *models.Document {
	return &models.Document{
		Floors:    []models.Floor{{ID: "f1", Name: "Floor 1"}},
		WallPorts: []models.WallPort{{ID: "p1", FloorID: "f1", PortNumber: "001"}, {ID: "p2", FloorID: "f1", PortNumber: "002"}},
		Switches:  []models.Switch{{ID: "sw1", Name: "Access-A", IP: "10.0.0.1", PortCount: 2, FloorID: "f1", CategoryID: "cat1"}},
		Users:     []models.User{{ID: "u1", Name: "John Doe"}},
	}
}

func newApp(t *testing.T) (*fiber.App, *inventory.Engine) {
	t.Helper()
	reg := prometheus.NewRegistry()
	inv := inventory.New(fixture(), inventory.Options{Logger: zap.NewNop(), Metrics: metrics.New(reg)})
	app := fiber.New(fiber.Config{Views: NewEngine("./templates")})
	SetupRoutes(app, inv, zap.NewNop(), reg)
	return app, inv
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorCode(t *testing.T, body []byte) ErrorCode {
	t.Helper()
	var out struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return ErrorCode(out.Code)
}

func TestUpsertConnection(t *testing.T) {
	app, _ := newApp(t)

	resp, body := do(t, app, http.MethodPut, "/api/connections", map[string]any{
		"wallPortId": "p1", "switchId": "sw1", "switchPort": 1, "vlan": "100",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var conn models.Connection
	require.NoError(t, json.Unmarshal(body, &conn))
	assert.Equal(t, "Connection created", conn.History[0].Message)

	resp, body = do(t, app, http.MethodPut, "/api/connections", map[string]any{"wallPortId": "p1", "vlan": "200"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &conn))
	assert.Equal(t, "Updated: vlan from '100' to '200'", conn.History[0].Message)

	resp, body = do(t, app, http.MethodGet, "/api/floors/f1/wall-ports", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ports []struct {
		ID         string             `json:"id"`
		Connection *models.Connection `json:"connection"`
	}
	require.NoError(t, json.Unmarshal(body, &ports))
	require.Len(t, ports, 2)
	require.NotNil(t, ports[0].Connection)
	assert.Equal(t, "200", ports[0].Connection.Vlan)
	assert.Nil(t, ports[1].Connection)
}

func TestUpsertConnection_VirtualPort(t *testing.T) {
	app, inv := newApp(t)
	resp, body := do(t, app, http.MethodPut, "/api/connections", map[string]any{
		"switchId": "sw1", "switchPort": 2,
		"virtualPort": map[string]any{"floorId": "f1", "portNumber": "TMP"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var conn models.Connection
	require.NoError(t, json.Unmarshal(body, &conn))
	assert.True(t, inv.Snapshot().Index.WallPorts[conn.WallPortID].IsVirtual)
}

func TestErrors(t *testing.T) {
	app, inv := newApp(t)
	before := inv.Snapshot()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   ErrorCode
	}{
		{"port out of range", http.MethodPut, "/api/connections", map[string]any{"wallPortId": "p1", "switchId": "sw1", "switchPort": 3}, http.StatusUnprocessableEntity, PortOutOfRange},
		{"unknown wall port", http.MethodPut, "/api/connections", map[string]any{"wallPortId": "nope"}, http.StatusNotFound, NotFound},
		{"bad json", http.MethodPut, "/api/connections", "{", http.StatusBadRequest, InvalidRequest},
		{"no connection", http.MethodDelete, "/api/connections/p1", nil, http.StatusNotFound, NoConnection},
		{"duplicate port", http.MethodPost, "/api/floors/f1/wall-ports", map[string]any{"portNumber": "1"}, http.StatusCreated, NoError},
		{"duplicate port again", http.MethodPost, "/api/floors/f1/wall-ports", map[string]any{"portNumber": "1"}, http.StatusConflict, Duplicate},
		{"malformed import", http.MethodPost, "/api/document/import", "[", http.StatusBadRequest, MalformedDocument},
		{"reset unconfirmed", http.MethodPost, "/api/document/reset", nil, http.StatusConflict, ConfirmationRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			if tt.code != NoError {
				assert.Equal(t, tt.code, errorCode(t, body))
			}
		})
	}
	assert.Len(t, inv.Snapshot().Doc.Connections, len(before.Doc.Connections))
}

func TestDeleteSwitch_RequiresConfirmation(t *testing.T) {
	app, inv := newApp(t)
	_, err := inv.UpsertConnection(inventory.ConnectionInput{WallPortID: "p1", SwitchID: strPtr("sw1"), SwitchPort: intPtr(1)}, nil)
	require.NoError(t, err)

	resp, body := do(t, app, http.MethodDelete, "/api/switches/sw1", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var out struct {
		Code   int              `json:"code"`
		Impact inventory.Impact `json:"impact"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int(ConfirmationRequired), out.Code)
	assert.Equal(t, 1, out.Impact.Connections)
	assert.Contains(t, inv.Snapshot().Index.Switches, "sw1")

	resp, _ = do(t, app, http.MethodDelete, "/api/switches/sw1?confirm=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, inv.Snapshot().Index.Switches, "sw1")
	assert.Empty(t, inv.Snapshot().Doc.Connections)
}

func TestDeleteUser_NoConfirmation(t *testing.T) {
	app, inv := newApp(t)
	resp, _ := do(t, app, http.MethodDelete, "/api/users/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, inv.Snapshot().Doc.Users)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestNextPort(t *testing.T) {
	app, inv := newApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/switches/sw1/next-port", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"port":1}`, string(body))

	for i, p := range []string{"p1", "p2"} {
		_, err := inv.UpsertConnection(inventory.ConnectionInput{WallPortID: p, SwitchID: strPtr("sw1"), SwitchPort: intPtr(i + 1)}, nil)
		require.NoError(t, err)
	}
	resp, body = do(t, app, http.MethodGet, "/api/switches/sw1/next-port", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, NoFreePort, errorCode(t, body))

	resp, _ = do(t, app, http.MethodGet, "/api/switches/sw9/next-port", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBulkEditAndDisconnect(t *testing.T) {
	app, inv := newApp(t)
	resp, body := do(t, app, http.MethodPost, "/api/connections/bulk", map[string]any{
		"wallPortIds": []string{"p1", "p2"},
		"updates":     map[string]any{"room": "101"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"updated":0,"created":2}`, string(body))
	assert.Len(t, inv.Snapshot().Doc.Connections, 2)

	resp, _ = do(t, app, http.MethodDelete, "/api/connections/p1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, inv.Snapshot().Doc.Connections, 1)
}

func TestDocumentExportImport(t *testing.T) {
	app, inv := newApp(t)
	resp, body := do(t, app, http.MethodGet, "/api/document", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	_, err := inv.AddFloor("Floor 2")
	require.NoError(t, err)
	require.Len(t, inv.Snapshot().Doc.Floors, 2)

	resp, _ = do(t, app, http.MethodPost, "/api/document/import", string(body))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, inv.Snapshot().Doc.Floors, 1)
}

func TestExportTables(t *testing.T) {
	app, _ := newApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/export/wall-ports/f1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "Port Number,Connection Status,"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "wall-ports-Floor-1-")

	resp, body = do(t, app, http.MethodGet, "/api/export/switches?format=xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PK", string(body[:2]))

	resp, _ = do(t, app, http.MethodGet, "/api/export/switches?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, app, http.MethodGet, "/api/export/wall-ports/f9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSwitchLayoutRoutes(t *testing.T) {
	app, _ := newApp(t)
	resp, body := do(t, app, http.MethodGet, "/api/switches/sw1/layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"rows":[[1],[2]]}`, string(body))

	resp, body = do(t, app, http.MethodPut, "/api/switches/sw1/layout", map[string]any{"templateId": "custom", "rows": [][]int{{2, 1}}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"rows":[[2,1]]}`, string(body))
}

func TestDashboardAndMetrics(t *testing.T) {
	app, _ := newApp(t)
	resp, body := do(t, app, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Access-A")

	do(t, app, http.MethodPost, "/api/users", map[string]any{"name": "Jane"})
	resp, body = do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `portmap_mutations_total{op="addUser",result="ok"} 1`)
}
