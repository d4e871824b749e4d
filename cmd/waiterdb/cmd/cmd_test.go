package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
)

const fixture = "../../../data/catalog.json"

// run executes the root command against a throwaway database.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runWithDB(t, filepath.Join(t.TempDir(), "catalog.db"), stdin, args...)
}

// runWithDB executes the root command with args and stdin and returns stdout.
// Flag variables are reset since cobra keeps them between executions.
func runWithDB(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_PATH", dbPath)

	searchFile, searchStore, searchLimit, searchJSON = "", false, 20, false
	searchCategory, searchAllergens, searchTags = nil, nil, nil
	browseFile, browseStore, browseLimit = "", false, 10

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearch_QueryRelevanceAndJSON(t *testing.T) {
	out, err := run(t, "", "search", "лосос", "--file", fixture, "--json")
	require.NoError(t, err)

	var v catalog.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.NotEmpty(t, v.Entries)
	assert.Equal(t, "kitchen-salmon-tartare", v.Entries[0].ID)
}

func TestSearch_FacetsWithoutQueryKeepCollectionOrder(t *testing.T) {
	out, err := run(t, "", "search", "--file", fixture, "--category", "Вина,Бар")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "wine-malbec-reserva-2019\t"))
	assert.True(t, strings.HasPrefix(lines[1], "wine-sauvignon-blanc\t"))
	assert.True(t, strings.HasPrefix(lines[2], "bar-negroni\t"))
	assert.Equal(t, "3 of 3 shown", lines[3])
}

func TestSearch_MissingFile(t *testing.T) {
	_, err := run(t, "", "search", "x", "--file", filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestImport_ThenSearchStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")

	t.Run("import", func(t *testing.T) {
		out, err := runWithDB(t, dbPath, "", "import", fixture)
		require.NoError(t, err)
		assert.Equal(t, "imported 6 entries\n", out)
	})

	t.Run("search store", func(t *testing.T) {
		out, err := runWithDB(t, dbPath, "", "search", "negroni", "--store")
		require.NoError(t, err)
		assert.Contains(t, out, "bar-negroni")
		assert.Contains(t, out, "1 of 1 shown")
	})
}

func TestBrowse_TogglesAndFacets(t *testing.T) {
	in := strings.Join([]string{
		":menu Бар",
		":facets",
		":bogus x",
		":quit",
	}, "\n")
	out, err := run(t, in, "browse", "--file", fixture)
	require.NoError(t, err)

	// Initial view lists everything, the toggle narrows to the bar.
	assert.Contains(t, out, "6 of 6 shown")
	assert.Contains(t, out, "bar-negroni\tНегрони\t[Бар]")
	assert.Contains(t, out, "1 of 1 shown")
	assert.Contains(t, out, "*Бар(1)")
}

func TestBrowse_PendingQueryShownAtEOF(t *testing.T) {
	// No :quit; input ends while the query is still debouncing.
	out, err := run(t, "рибай", "browse", "--file", fixture)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "1 of 1 shown", lines[len(lines)-1])
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "kitchen-steak-ribeye\t"))
}

func TestBrowse_PendingQueryShownOnQuit(t *testing.T) {
	out, err := run(t, "рибай\n:quit\nнегрони", "browse", "--file", fixture)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "1 of 1 shown"))
	assert.Contains(t, out, "kitchen-steak-ribeye\t")
	// Lines after :quit are not read.
	assert.Equal(t, 1, strings.Count(out, "1 of 1 shown"))
}
