package tap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/step"
)

func TestFormulaClassName(t *testing.T) {
	cases := map[string]string{
		"tools":        "Tools",
		"my-tools":     "MyTools",
		"my_tools":     "MyTools",
		"a-b_c":        "ABC",
		"left--right":  "LeftRight",
		"serve2":       "Serve2",
	}
	for in, want := range cases {
		assert.Equal(t, want, formulaClassName(in), in)
	}
}

func TestDeriveNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com/releases/widget-1.2.3.tar.gz":   "widget",
		"https://example.com/releases/widget-v2.0.zip":       "widget",
		"https://example.com/widget.tgz":                     "widget",
		"https://example.com/widget-1.0.tar.gz?token=abc":    "widget",
		"https://example.com/widget-1.0.tar.gz#fragment":     "widget",
		"https://example.com/my-widget-1.0.tar.bz2":          "my-widget",
		"https://example.com/widget-stable.tar.gz":           "widget-stable",
		"https://example.com/archive.tar.xz":                 "archive",
	}
	for url, want := range cases {
		assert.Equal(t, want, deriveNameFromURL(url), url)
	}
}

func TestAddFormulaStubApply(t *testing.T) {
	tapPath := t.TempDir()
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))
	rc.State.TapPath = tapPath
	s := NewAddFormulaStep()

	require.NoError(t, s.Apply(context.Background(), rc, testEntry()))

	formulaPath := filepath.Join(tapPath, "Formula", "tools.rb")
	content, err := os.ReadFile(formulaPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "class Tools < Formula")
	assert.Contains(t, string(content), `sha256 "TODO"`)
	assert.Equal(t, "tools", rc.State.FormulaName)

	status, err := s.Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Complete, status)
}

func TestAddFormulaStubApplyKeepsExisting(t *testing.T) {
	tapPath := t.TempDir()
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))
	rc.State.TapPath = tapPath
	s := NewAddFormulaStep()

	formulaDir := filepath.Join(tapPath, "Formula")
	require.NoError(t, os.MkdirAll(formulaDir, 0755))
	existing := filepath.Join(formulaDir, "tools.rb")
	require.NoError(t, os.WriteFile(existing, []byte("# hand edited\n"), 0644))

	require.NoError(t, s.Apply(context.Background(), rc, testEntry()))

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "# hand edited\n", string(content))
}

func TestAddFormulaStubVerifyIncomplete(t *testing.T) {
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))
	rc.State.TapPath = t.TempDir()
	s := NewAddFormulaStep()

	status, err := s.Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Incomplete, status)
}

func TestAddFormulaBrewCreate(t *testing.T) {
	tapPath := t.TempDir()
	in, err := inputs.New("alice", "tools", "", inputs.VisibilityPublic, "main",
		inputs.FormulaModeBrewCreate, "https://example.com/widget-1.0.tar.gz", "")
	require.NoError(t, err)

	fake := newFakeExec()
	rc := newRunContext(t, fake, in)
	rc.State.TapPath = tapPath
	s := NewAddFormulaStep()

	// brew create drops the generated formula into the tap.
	formulaDir := filepath.Join(tapPath, "Formula")
	require.NoError(t, os.MkdirAll(formulaDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(formulaDir, "widget.rb"), []byte("class Widget"), 0644))

	require.NoError(t, s.Apply(context.Background(), rc, testEntry()))
	assert.True(t, fake.called("brew create --tap alice/homebrew-tools --set-name widget https://example.com/widget-1.0.tar.gz"))
	assert.Equal(t, "widget", rc.State.FormulaName)

	status, err := s.Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Complete, status)
}

func TestCollectFormulaNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.rb"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.rb"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), nil, 0644))

	names, err := collectFormulaNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	names, err = collectFormulaNames(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
