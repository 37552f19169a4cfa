package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, db string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := RootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--database", db}, args...))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestRosterWorkflow(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	db := "sqlite://" + filepath.Join(dir, "roster.db")

	out := run(t, db, "coach", "add", "a@dojo.org", "--name", "Sensei A")
	assert.Contains(t, out, "coach 1: a@dojo.org")

	roster := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(roster, []byte(
		"Name,DOB,Dojo,Belt,Day,Gender\n"+
			"Ava Chen,2012-02-14,North,white,sat,f\n"+
			"Ben Ito,2011-01-01,North,red,sun,m\n"), 0o600))

	out = run(t, db, "import", roster, "--coach", "a@dojo.org", "--preview")
	assert.Contains(t, out, "Would import 1 athletes from roster.csv")

	out = run(t, db, "import", roster, "--coach", "a@dojo.org")
	assert.Contains(t, out, "Imported 1 athletes from roster.csv")
	assert.Contains(t, out, "#1  Ava Chen (White, Saturday)")
	assert.Contains(t, out, "Row 3: Invalid belt 'red'")

	out = run(t, db, "stats")
	assert.Contains(t, out, "Athletes: 1 (Saturday 1, Sunday 0)")
	assert.Contains(t, out, "a@dojo.org")

	exported := filepath.Join(dir, "out.csv")
	run(t, db, "export", "--format", "csv", "-o", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1,Ava Chen,2012-02-14,North,White,Saturday,Female,"), lines[1])

	out = run(t, db, "coach", "promote", "a@dojo.org")
	assert.Contains(t, out, "organizer rights granted for a@dojo.org")

	out = run(t, db, "coach", "list")
	assert.Contains(t, out, "organizer")
}

func TestTemplateCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "template.csv")
	run(t, "memory://", "template", "--format", "csv", "-o", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,"), string(data))
	assert.Contains(t, string(data), "John Doe")
}

func TestImport_UnknownCoachPreview(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(roster, []byte("Name,DOB,Dojo,Belt,Day,Gender\n"), 0o600))

	root := RootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--database", "memory://", "import", roster, "--coach", "nobody@dojo.org", "--preview"})
	assert.Error(t, root.Execute())
}
