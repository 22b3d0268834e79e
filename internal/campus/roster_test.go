package campus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRosterFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRosterParsesCommaAndNewlineSeparated(t *testing.T) {
	path := writeRosterFile(t, "Ana@Campus.edu, bob@campus.edu\n  carol@campus.edu ,\n\n")

	roster := NewRoster(path)
	require.Equal(t, 3, roster.Size())
	require.True(t, roster.Contains("ana@campus.edu"))
	require.True(t, roster.Contains("  BOB@CAMPUS.EDU  "))
	require.True(t, roster.Contains("carol@campus.edu"))
	require.False(t, roster.Contains("dave@campus.edu"))
}

func TestRosterMissingFileBehavesAsEmptySet(t *testing.T) {
	roster := NewRoster(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.Equal(t, 0, roster.Size())
	require.False(t, roster.Contains("ana@campus.edu"))
}

func TestNilRosterContainsNothing(t *testing.T) {
	var roster *Roster
	require.False(t, roster.Contains("ana@campus.edu"))
}
