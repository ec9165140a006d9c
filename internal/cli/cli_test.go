package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shreya0626/secret-santa/internal/adapter/sqlite"
	"github.com/shreya0626/secret-santa/internal/domain"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "secretsanta", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "roster", "assignments"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	envFile := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFile)
	assert.Equal(t, ".env", envFile.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestAssignmentsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"assignments"})
	require.NoError(t, err)

	year := sub.Flags().Lookup("year")
	require.NotNil(t, year)
	assert.Equal(t, "0", year.DefValue)
}

// setupEnv points the config at a fresh sqlite file and returns its path
// together with a dotenv path that does not exist.
func setupEnv(t *testing.T) (dbPath, envFile string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "santa.db")
	t.Setenv("STORE", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("CYCLE_YEAR", "2025")
	t.Setenv("ROSTER_FILE", "")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "text")
	return dbPath, filepath.Join(dir, "missing.env")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedAssignments(t *testing.T, dbPath, cycle string, pairs domain.AssignmentMap) {
	t.Helper()
	st, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	_, err = st.SaveAssignments(context.Background(), cycle, 0, pairs)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestAssignmentsCommand_Text(t *testing.T) {
	dbPath, envFile := setupEnv(t)
	seedAssignments(t, dbPath, "2025", domain.AssignmentMap{"Govind": "Shreya"})

	out, err := execute(t, "--env-file", envFile, "assignments")
	require.NoError(t, err)
	assert.Contains(t, out, "cycle 2025: 1 drawn, 12 pending")
	assert.Contains(t, out, "Govind -> Shreya")
	assert.Contains(t, out, "Shreya (pending)")
	assert.NotContains(t, out, "Govind (pending)")
}

func TestAssignmentsCommand_YAMLOtherYear(t *testing.T) {
	dbPath, envFile := setupEnv(t)
	seedAssignments(t, dbPath, "2024", domain.AssignmentMap{"Harini": "Goutham", "Goutham": "Harini"})

	out, err := execute(t, "--env-file", envFile, "--format", "yaml", "assignments", "--year", "2024")
	require.NoError(t, err)

	var report AssignmentsReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2024", report.Cycle)
	assert.Equal(t, domain.AssignmentMap{"Harini": "Goutham", "Goutham": "Harini"}, report.Assignments)
	assert.Len(t, report.Pending, len(domain.DefaultRoster)-2)
	assert.NotContains(t, report.Pending, "Harini")
}

func TestAssignmentsCommand_EmptyCycle(t *testing.T) {
	_, envFile := setupEnv(t)

	out, err := execute(t, "--env-file", envFile, "assignments")
	require.NoError(t, err)
	assert.Contains(t, out, "cycle 2025: 0 drawn, 13 pending")
}

func TestRosterCommand(t *testing.T) {
	_, envFile := setupEnv(t)
	rosterPath := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(rosterPath, []byte("participants:\n  - Ana\n  - Bo\n"), 0o600))
	t.Setenv("ROSTER_FILE", rosterPath)

	out, err := execute(t, "--env-file", envFile, "roster")
	require.NoError(t, err)
	assert.Equal(t, "Ana\nBo\n", out)

	out, err = execute(t, "--env-file", envFile, "--format", "yaml", "roster")
	require.NoError(t, err)
	assert.Equal(t, "participants:\n    - Ana\n    - Bo\n", out)
}

func TestInvalidFormat(t *testing.T) {
	_, envFile := setupEnv(t)
	_, err := execute(t, "--env-file", envFile, "--format", "xml", "roster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfig(t *testing.T) {
	_, envFile := setupEnv(t)
	t.Setenv("STORE", "mongo")
	_, err := execute(t, "--env-file", envFile, "roster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
