package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	require.Equal(t, "mydb", cfg.AppName)
	require.Equal(t, StorageModeDisk, cfg.Storage.Mode)
	require.Equal(t, "DB", cfg.Storage.DataDir)
	require.Equal(t, "MY_DB> ", cfg.Repl.Prompt)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mydb.yaml")
	yaml := `
app_name: school
storage:
  data_dir: /var/lib/school
  sync_writes: true
log:
  level: info
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("MYDB_LOG_LEVEL", "debug")

	fs := pflag.NewFlagSet("mydb", pflag.ContinueOnError)
	fs.String("data-dir", "", "")
	fs.Bool("memory", false, "")
	require.NoError(t, fs.Parse([]string{"--data-dir=/tmp/override", "--memory"}))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)

	require.Equal(t, "school", cfg.AppName)
	require.True(t, cfg.Storage.SyncWrites)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/override", cfg.Storage.DataDir)
	require.Equal(t, StorageModeMemory, cfg.Storage.Mode)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestLoadConfig_BadMode(t *testing.T) {
	t.Setenv("MYDB_STORAGE_MODE", "tape")
	_, err := LoadConfig("", nil)
	require.ErrorIs(t, err, ErrBadStorageMode)
}
