package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA = "0b6f3f5e-6a43-4a8e-9a7e-0f2d6c1b9a11"
	idB = "5d1c2b7e-2f7d-4d7c-8f77-3c5d7e9b2a22"
	idC = "9e8d7c6b-5a49-4c3b-a2d1-e0f9a8b7c633"
)

func TestBuild_FirstOccurrenceWinsAndSorted(t *testing.T) {
	rows := []Row{
		{"Email": "zoe@example.com", "UUID": idA, "Group": "1"},
		{"Email": "amy@example.com", "UUID": idB, "Group": "2"},
		{"Email": "zoe@example.com", "UUID": idC, "Group": "3"},
	}
	opt := DefaultOptions()
	entries, st := Build(rows, opt)
	require.Len(t, entries, 2)
	assert.Equal(t, "amy@example.com", entries[0].Key)
	assert.Equal(t, "zoe@example.com", entries[1].Key)
	assert.Equal(t, idA, entries[1].ID, "first occurrence must win")
	assert.Equal(t, "https://[YOUR-SITE-URL]/?uuid="+idA, entries[1].URL)
	assert.Equal(t, Stats{Input: 3, Duplicates: 1, Written: 2}, st)
}

func TestBuild_EmptyKeysAndIdentifiers(t *testing.T) {
	rows := []Row{
		{"Email": "", "UUID": idA},
		{"Email": "a@example.com", "UUID": ""},
		{"Email": "b@example.com", "UUID": "not-a-uuid"},
	}
	opt := DefaultOptions()
	opt.AssignMissing = true
	opt.URLTemplate = TemplateFor("https://survey.example.org/")
	entries, st := Build(rows, opt)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, st.EmptyKeys)
	assert.Equal(t, 1, st.Assigned)
	assert.Equal(t, 1, st.InvalidIDs)

	_, err := uuid.Parse(entries[0].ID)
	assert.NoError(t, err, "generated id should be a UUID")
	assert.True(t, strings.HasPrefix(entries[0].URL, "https://survey.example.org/?uuid="))
	assert.Equal(t, "not-a-uuid", entries[1].ID)
}

func TestRead_MissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("Name,UUID\nx,y\n"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, err = Read(strings.NewReader(""), DefaultOptions())
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestExport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "groups_with_uuid.csv")
	out := filepath.Join(dir, "private", "mapping.csv")
	content := "Email,UUID,Group\n" +
		"b@example.com," + idB + ",2\n" +
		"a@example.com," + idA + ",1\n" +
		"b@example.com," + idC + ",3\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	st, err := Export(in, out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Written)
	assert.Equal(t, 1, st.Duplicates)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Email,UUID,Personalized_URL", lines[0])
	assert.Equal(t, "a@example.com,"+idA+",https://[YOUR-SITE-URL]/?uuid="+idA, lines[1])
	assert.Equal(t, "b@example.com,"+idB+",https://[YOUR-SITE-URL]/?uuid="+idB, lines[2])
}

func TestExport_OwnerOnlyMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "groups.csv")
	out := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(in, []byte("Email,UUID\na@example.com,"+idA+"\n"), 0o644))
	// A previous export with a wider mode must not keep it.
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	_, err := Export(in, out, DefaultOptions())
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
