package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/crm-backend/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	content := "database:\n  path: " + filepath.Join(dir, "crm.db") + "\n" +
		"jobs:\n" +
		"  heartbeat_log: " + filepath.Join(dir, "heartbeat.txt") + "\n" +
		"  low_stock_log: " + filepath.Join(dir, "low_stock.txt") + "\n" +
		"  reminders_log: " + filepath.Join(dir, "reminders.txt") + "\n"
	path := filepath.Join(dir, "crm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSeedCmd_IsIdempotent(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	out, err := run(t, "seed", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 customers and 2 products")

	out, err = run(t, "seed", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 customers and 0 products")
}

func TestRunJobCmd_Heartbeat(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := run(t, "run-job", "heartbeat", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Job heartbeat completed")

	data, err := os.ReadFile(filepath.Join(dir, "heartbeat.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CRM is alive")
}

func TestRunJobCmd_LowStockAfterSeed(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	_, err := run(t, "seed", "--config", cfgPath)
	require.NoError(t, err)

	// Laptop is seeded with stock 10, which is not below the threshold.
	_, err = run(t, "run-job", "low-stock", "--config", cfgPath)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "low_stock.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunJobCmd_All(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := run(t, "run-job", "all", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Job all completed")
	assert.FileExists(t, filepath.Join(dir, "heartbeat.txt"))
}

func TestRunJobCmd_Errors(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	_, err := run(t, "run-job", "vacuum", "--config", cfgPath)
	assert.ErrorContains(t, err, "unknown job")

	_, err = run(t, "run-job")
	assert.Error(t, err)

	_, err = run(t, "seed", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "not found")
}
