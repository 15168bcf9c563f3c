package inputs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsRepoName(t *testing.T) {
	in, err := New("alice", "tools", "", VisibilityPublic, "main", FormulaModeStub, "", "")
	require.NoError(t, err)

	assert.Equal(t, "homebrew-tools", in.RepoName)
	assert.Equal(t, "alice/homebrew-tools", in.RepoSlug())
	assert.Equal(t, "alice/tools", in.Shorthand())
	assert.True(t, in.Canonical())
}

func TestNewCustomRepoName(t *testing.T) {
	in, err := New("alice", "tools", "my-tap-repo", VisibilityPrivate, "main", FormulaModeStub, "", "")
	require.NoError(t, err)

	assert.Equal(t, "my-tap-repo", in.RepoName)
	assert.False(t, in.Canonical())
}

func TestNewNormalization(t *testing.T) {
	in, err := New("  alice  ", " tools ", "", VisibilityPublic, "  main  ", FormulaModeStub, "", "")
	require.NoError(t, err)

	assert.Equal(t, "alice", in.Owner)
	assert.Equal(t, "tools", in.Tap)
	assert.Equal(t, "main", in.Branch)
}

func TestNewRejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		tap   string
	}{
		{"empty owner", "", "tools"},
		{"slash in owner", "a/b", "tools"},
		{"whitespace in owner", "a b", "tools"},
		{"empty tap", "alice", "   "},
		{"slash in tap", "alice", "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.owner, tt.tap, "", VisibilityPublic, "main", FormulaModeStub, "", "")
			assert.Error(t, err)
		})
	}
}

func TestNewRequiresBranch(t *testing.T) {
	_, err := New("alice", "tools", "", VisibilityPublic, "  ", FormulaModeStub, "", "")
	assert.ErrorContains(t, err, "branch is required")
}

func TestBrewCreateRequiresURL(t *testing.T) {
	_, err := New("alice", "tools", "", VisibilityPublic, "main", FormulaModeBrewCreate, "", "")
	assert.ErrorContains(t, err, "formula-url is required")

	in, err := New("alice", "tools", "", VisibilityPublic, "main", FormulaModeBrewCreate, "https://example.com/t-1.0.tar.gz", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/t-1.0.tar.gz", in.FormulaURL)
}

func TestParseVisibility(t *testing.T) {
	v, err := ParseVisibility("Public")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, v)

	v, err = ParseVisibility(" private ")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, v)

	_, err = ParseVisibility("internal")
	assert.Error(t, err)
}

func TestParseFormulaMode(t *testing.T) {
	m, err := ParseFormulaMode("stub")
	require.NoError(t, err)
	assert.Equal(t, FormulaModeStub, m)

	m, err = ParseFormulaMode("Brew-Create")
	require.NoError(t, err)
	assert.Equal(t, FormulaModeBrewCreate, m)

	_, err = ParseFormulaMode("auto")
	assert.Error(t, err)
}
