package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestLoadICP_EmptyPathReturnsNil(t *testing.T) {
	logger = arbor.NewLogger()

	assert.Nil(t, loadICP(""))
}

func TestLoadICP_MissingFileReturnsNilWithoutPanic(t *testing.T) {
	logger = arbor.NewLogger()

	assert.Nil(t, loadICP(filepath.Join(t.TempDir(), "missing.json")))
}

func TestLoadICP_ParsesValidJSON(t *testing.T) {
	logger = arbor.NewLogger()
	path := filepath.Join(t.TempDir(), "icp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"industry":"fintech","company_size_min":50}`), 0o644))

	icp := loadICP(path)

	require.NotNil(t, icp)
	assert.Equal(t, "fintech", icp["industry"])
}

func TestLoadICP_MalformedJSONReturnsNil(t *testing.T) {
	logger = arbor.NewLogger()
	path := filepath.Join(t.TempDir(), "icp.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	assert.Nil(t, loadICP(path))
}
