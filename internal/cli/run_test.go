package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkage/internal/engine"
)

const founderCSV = `Type,ID,Transaction,FirstName,LastName,Email
Customer,A,NYC_t1_ownBusiness_777,Ann,Lee,
Counter-Party,B,NYC_t2_billPayed_777_50.00,Bob,Ray,
Customer,,NYC_t3_send_A,Cat,Doe,c@x
`

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runCommand executes the run command with a fixed id generator.
func runCommand(t *testing.T, format string, ids []string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	// Swap in a deterministic generator through the command's options.
	cmd.RunE = func(c *cobra.Command, a []string) error {
		opts := &RunOptions{RootOptions: rootOpts, IDGenerator: engine.NewFixedGenerator(ids...)}
		opts.Database, _ = c.Flags().GetString("db")
		opts.Config, _ = c.Flags().GetString("config")
		opts.Fresh, _ = c.Flags().GetBool("fresh")
		opts.Positional, _ = c.Flags().GetBool("positional")
		return runBatch(opts, a[0], c)
	}
	return buf, cmd.Execute()
}

func TestRunMissingDatabaseFlag(t *testing.T) {
	input := writeInput(t, t.TempDir(), founderCSV)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{input}) // Missing --db flag

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestRunFilesBatch(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, founderCSV)
	dbPath := filepath.Join(dir, "linkage.db")

	buf, err := runCommand(t, "json", []string{"g1", "g2"}, "--db", dbPath, input)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Rows         int `json:"rows"`
			GroupsFormed int `json:"groups_formed"`
			GroupsTotal  int `json:"groups_total"`
			Assigned     int `json:"assigned"`
			Rejected     []struct {
				Row int `json:"row"`
			} `json:"rejected"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Contains(t, buf.String(), `"skipped": []`)
	assert.Contains(t, buf.String(), `"orphans": []`)
	assert.Equal(t, 3, resp.Data.Rows)
	assert.Equal(t, 1, resp.Data.GroupsFormed)
	assert.Equal(t, 1, resp.Data.GroupsTotal)
	assert.Equal(t, 2, resp.Data.Assigned)
	require.Len(t, resp.Data.Rejected, 1)
	assert.Equal(t, 4, resp.Data.Rejected[0].Row)
}

func TestRunTextOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, founderCSV)
	dbPath := filepath.Join(dir, "linkage.db")

	buf, err := runCommand(t, "text", []string{"g1"}, "--db", dbPath, input)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 rows, 1 rejected")
	assert.Contains(t, buf.String(), "groups formed: 1 (total 1)")
}

func TestRunIncrementalAndFresh(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, founderCSV)
	dbPath := filepath.Join(dir, "linkage.db")

	_, err := runCommand(t, "text", []string{"g1"}, "--db", dbPath, input)
	require.NoError(t, err)

	// The founder opens a second group on the next batch; totals grow.
	buf, err := runCommand(t, "text", []string{"g2"}, "--db", dbPath, input)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "(total 2)")

	buf, err = runCommand(t, "text", []string{"g3"}, "--db", dbPath, "--fresh", input)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "(total 1)")
}

func TestRunInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, founderCSV)
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("threshold: 2\n"), 0644))

	buf, err := runCommand(t, "text", nil, "--db", filepath.Join(dir, "linkage.db"), "--config", cfgPath, input)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, buf.String(), "Error [E_CONFIG]")
}

func TestRunNonExistentInput(t *testing.T) {
	dir := t.TempDir()

	buf, err := runCommand(t, "json", nil, "--db", filepath.Join(dir, "linkage.db"), filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInput, resp.Error.Code)
}
