package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/storyteller/internal/config"
	"github.com/cory-johannsen/storyteller/internal/game/character"
	"github.com/cory-johannsen/storyteller/internal/game/session"
	"github.com/cory-johannsen/storyteller/internal/storage"
	"github.com/cory-johannsen/storyteller/internal/storage/postgres"
	"github.com/cory-johannsen/storyteller/internal/storage/storagetest"
	"github.com/cory-johannsen/storyteller/internal/testutil"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// useTempSQLite points the default configuration at a fresh sqlite file.
func useTempSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saves.db")
	t.Setenv("STORYTELLER_SQLITE_PATH", path)
	return path
}

func TestSheet_Scores(t *testing.T) {
	out, _, err := run(t, context.Background(), "sheet", "--name", "Wren",
		"--bdy", "3", "--mnd", "2", "--sol", "2", "--frc", "2", "--foc", "4", "--fns", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Wren")
	assert.Contains(t, out, "  9 / 9")
	assert.Contains(t, out, "40 / 40")
	assert.NotContains(t, out, "\033[", "colors are stripped by default")
}

func TestSheet_PregeneratedJSON(t *testing.T) {
	out, _, err := run(t, context.Background(), "sheet", "--pregenerated", "--json", "--foc", "5")
	require.NoError(t, err)

	var snap character.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "Revulo Kosmaroj", snap.Name)
	assert.Equal(t, 5, snap.Approaches.FOC)
	assert.Equal(t, 2, snap.Approaches.FRC)
	assert.Equal(t, 44, snap.Resources.MaxSTA)
}

func TestSheet_Background(t *testing.T) {
	out, _, err := run(t, context.Background(), "sheet", "--background", "soul", "--name", "Ila", "--color")
	require.NoError(t, err)
	assert.Contains(t, out, "Ila")
	assert.Contains(t, out, "Soul | ")
	assert.Contains(t, out, "\033[")

	_, _, err = run(t, context.Background(), "sheet", "--background", "heart")
	assert.Error(t, err)

	_, _, err = run(t, context.Background(), "sheet", "--background", "soul", "--pregenerated")
	assert.Error(t, err)
}

func TestSaves_ListShowDelete(t *testing.T) {
	useTempSQLite(t)
	ctx := context.Background()

	out, _, err := run(t, ctx, "saves", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved games")

	cfg, err := loadConfig()
	require.NoError(t, err)
	store, err := openStore(ctx, cfg)
	require.NoError(t, err)
	_, err = store.Save(ctx, storagetest.Sample(storage.DefaultSlot))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, _, err = run(t, ctx, "saves", "list")
	require.NoError(t, err)
	assert.Contains(t, out, storage.DefaultSlot)
	assert.Contains(t, out, "Wren")
	assert.Contains(t, out, string(session.StatePlaying))

	out, _, err = run(t, ctx, "saves", "show", storage.DefaultSlot)
	require.NoError(t, err)
	assert.Contains(t, out, "Rusted Pipe")

	_, _, err = run(t, ctx, "saves", "delete", storage.DefaultSlot)
	require.NoError(t, err)
	_, _, err = run(t, ctx, "saves", "delete", storage.DefaultSlot)
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}

func TestOpenStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg, err := config.LoadFromViper(config.New())
	require.NoError(t, err)
	cfg.Storage.Driver = config.DriverRedis
	cfg.Redis.Addr = mr.Addr()

	store, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()
	slots, err := store.Slots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)

	mr.Close()
	_, err = openStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMigrate_RejectsDirection(t *testing.T) {
	_, _, err := run(t, context.Background(), "migrate", "sideways")
	assert.Error(t, err)
}

func TestMigrate_UpThenDown(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	t.Setenv("STORYTELLER_STORAGE_DRIVER", config.DriverPostgres)
	t.Setenv("STORYTELLER_DATABASE_HOST", pc.Config.Host)
	t.Setenv("STORYTELLER_DATABASE_PORT", strconv.Itoa(pc.Config.Port))
	ctx := context.Background()

	_, _, err := run(t, ctx, "saves", "list")
	assert.ErrorIs(t, err, postgres.ErrSchemaMissing)

	_, _, err = run(t, ctx, "migrate", "up")
	require.NoError(t, err)
	assert.NoError(t, pc.Pool.CheckSchema(ctx))
	_, _, err = run(t, ctx, "migrate", "up")
	assert.NoError(t, err, "re-applying is a no-op")

	out, _, err := run(t, ctx, "saves", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved games")

	_, _, err = run(t, ctx, "migrate", "down", "--steps", "1")
	require.NoError(t, err)
	assert.ErrorIs(t, pc.Pool.CheckSchema(ctx), postgres.ErrSchemaMissing)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServe_WelcomesClientsAndStops(t *testing.T) {
	useTempSQLite(t)
	port := freePort(t)
	t.Setenv("STORYTELLER_TELNET_HOST", "127.0.0.1")
	t.Setenv("STORYTELLER_TELNET_PORT", strconv.Itoa(port))
	t.Setenv("STORYTELLER_LOGGING_LEVEL", "warn")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, _, err := run(t, ctx, "serve")
		done <- err
	}()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	require.Eventually(t, func() bool {
		c, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	client := testutil.NewTelnetClient(t, addr)
	client.Expect("Welcome to Project Hope")
	client.Expect("> ")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestConfigFlag_LoadsDevConfig(t *testing.T) {
	t.Setenv("STORYTELLER_SQLITE_PATH", filepath.Join(t.TempDir(), "dev.db"))
	out, _, err := run(t, context.Background(), "--config", filepath.Join("..", "..", "configs", "dev.yaml"), "saves", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved games")
}
