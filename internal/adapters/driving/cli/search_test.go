package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/services"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := runCLI(t, newTestApp(t), "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestSearchCmd_TextOutput(t *testing.T) {
	a := seededApp(t)

	out, err := runCLI(t, a, "search", "python programming")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Regexp(t, `\[1\] Programming \(\d+\.\d{2}%\)`, out)
	assert.Contains(t, out, "Source: test1.md")
	assert.Contains(t, out, "Python is a great programming language")
}

func TestSearchCmd_NoResults(t *testing.T) {
	a := seededApp(t)

	out, err := runCLI(t, a, "search", "xyzabc123nonexistentquery")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
	assert.NotContains(t, out, "Results:")
}

// The CLI must print exactly the ranking a direct store search returns.
func TestSearchCmd_JSONMatchesDirectSearch(t *testing.T) {
	a := seededApp(t)

	for _, q := range []string{"python programming", "is", "testing ensures code quality"} {
		out, err := runCLI(t, a, "search", "--json", q)
		require.NoError(t, err)

		var resp domain.SearchResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp), out)

		direct, err := services.Search(context.Background(), a.Store, q, a.Settings.Search.Limit)
		require.NoError(t, err)

		assert.Equal(t, len(direct), resp.Count, q)
		require.Len(t, resp.Results, len(direct), q)
		for i := range direct {
			assert.Equal(t, direct[i].ID, resp.Results[i].ID, q)
			assert.Equal(t, direct[i].Score, resp.Results[i].Score, q)
		}
	}
}

func TestSearchCmd_LimitFlag(t *testing.T) {
	a := seededApp(t)

	out, err := runCLI(t, a, "search", "--json", "-n", "1", "is")
	require.NoError(t, err)

	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestSearchCmd_EmptyJSON(t *testing.T) {
	a := seededApp(t)

	out, err := runCLI(t, a, "search", "--json", "xyzabc123nonexistentquery")
	require.NoError(t, err)

	assert.JSONEq(t, `{"count":0,"results":[]}`, out)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n\n b\tc", 10))
	assert.Equal(t, "abc...", snippet("abcdef", 3))
	assert.Equal(t, "", snippet("   ", 10))
}
