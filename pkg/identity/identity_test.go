package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benmeehan/geo-alarm/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDeviceInfo_GeneratesAndPersistsID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")

	d := NewDeviceInfo(path, file.NewFileService())
	require.NoError(t, d.LoadDeviceInfo())
	id := d.GetDeviceID()
	assert.NotEmpty(t, id)

	again := NewDeviceInfo(path, file.NewFileService())
	require.NoError(t, again.LoadDeviceInfo())
	assert.Equal(t, id, again.GetDeviceID(), "generated ID should be stable across restarts")
}

func TestLoadDeviceInfo_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"device_id":"tracker-7","device_name":"bike"}`), 0600))

	d := NewDeviceInfo(path, file.NewFileService())
	require.NoError(t, d.LoadDeviceInfo())
	assert.Equal(t, "tracker-7", d.GetDeviceID())
	assert.Equal(t, "bike", d.GetDeviceIdentity().Name)
}
