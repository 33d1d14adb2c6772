package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go-portmap/internal/config"
	"go-portmap/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenKV struct {
	*db.Memory
}

func (brokenKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func testApp(t *testing.T, kv db.KV) *app {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "SEED_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("STORAGE_KEY", "doc")
	return &app{dial: func(context.Context, config.StorageConfig) (db.KV, error) { return kv, nil }}
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"floors":[{"id":"f9","name":"Annex"}]}`), 0o644))
	return path
}

func TestImport_Persists(t *testing.T) {
	kv := db.NewMemory()
	require.NoError(t, run(context.Background(), testApp(t, kv), []string{"import", writeDocument(t)}))

	stored, err := kv.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.Contains(t, string(stored), "Annex")
}

func TestImport_FailsWhenStorageRejectsWrite(t *testing.T) {
	a := testApp(t, brokenKV{db.NewMemory()})
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetArgs([]string{"import", writeDocument(t)})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, out.String(), "imported")
	assert.NoError(t, a.close())
}

func TestReset_FailsWhenStorageRejectsWrite(t *testing.T) {
	err := run(context.Background(), testApp(t, brokenKV{db.NewMemory()}), []string{"reset", "--yes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	err = run(context.Background(), testApp(t, db.NewMemory()), []string{"reset"})
	assert.ErrorContains(t, err, "--yes")
}
