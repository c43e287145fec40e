package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"piverse/internal/config"
)

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Equal(t, "piverse app_version=1\n", out.String())
}

func TestStartFlagsBindToConfig(t *testing.T) {
	v := viper.New()
	start := newStartCmd(v)
	require.NoError(t, start.Flags().Parse([]string{
		"--db_backend=memdb",
		"--transport=grpc",
		"--enable_faucet",
		"--indexer.dsn=postgres://localhost/piverse",
		"--log.format=plain",
	}))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, config.BackendMemDB, cfg.DBBackend)
	require.Equal(t, config.TransportGRPC, cfg.Transport)
	require.True(t, cfg.EnableFaucet)
	require.Equal(t, "postgres://localhost/piverse", cfg.Indexer.DSN)
	require.Equal(t, config.LogFormatPlain, cfg.Log.Format)
	require.Equal(t, 256, cfg.Indexer.QueueSize)
}

func TestStartRejectsBadTransport(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"start", "--transport=udp", "--db_backend=memdb"})
	require.ErrorContains(t, root.Execute(), "unknown transport")
}

func TestOpenDB(t *testing.T) {
	db, err := openDB(config.NodeConfig{DBBackend: config.BackendMemDB})
	require.NoError(t, err)
	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = openDB(config.NodeConfig{Home: t.TempDir(), DBBackend: config.BackendGoLevelDB})
	require.NoError(t, err)
	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
	require.NoError(t, db.Close())
}
