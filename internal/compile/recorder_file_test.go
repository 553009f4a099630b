package compile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuild/internal/texlog"
)

func TestParseRecorder(t *testing.T) {
	fls := strings.Join([]string{
		"PWD /work/paper",
		"INPUT /usr/share/texmf/web2c/texmf.cnf",
		"INPUT ./paper.tex",
		"INPUT sections/../intro.tex\r",
		"OUTPUT paper.log",
		"garbage line",
		"INPUT ",
	}, "\n")
	rec, err := parseRecorder(strings.NewReader(fls), "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/usr/share/texmf/web2c/texmf.cnf",
		"/work/paper/intro.tex",
		"/work/paper/paper.tex",
	}, rec.Inputs.Sorted())
	assert.Equal(t, []string{"/work/paper/paper.log"}, rec.Outputs.Sorted())
}

func TestParseRecorderWithoutPWD(t *testing.T) {
	rec, err := parseRecorder(strings.NewReader("OUTPUT doc.aux\n"), "/docs")
	require.NoError(t, err)
	assert.True(t, rec.Outputs.Has("/docs/doc.aux"))
}

func TestDigestFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.aux")
	missing, err := digestFile(p)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p, nil, 0o644))
	empty, err := digestFile(p)
	require.NoError(t, err)
	assert.Equal(t, missing, empty)

	require.NoError(t, os.WriteFile(p, []byte("\\relax"), 0o644))
	full, err := digestFile(p)
	require.NoError(t, err)
	assert.NotEqual(t, empty, full)
	assert.Len(t, full.String(), 128)
	assert.Equal(t, full.String()[:12], full.Short())
}

func TestConverged(t *testing.T) {
	a, b := Digest{1}, Digest{2}
	assert.False(t, converged(nil))
	assert.False(t, converged([]Digest{a}))
	assert.False(t, converged([]Digest{a, b}))
	assert.True(t, converged([]Digest{b, a, a}))
	assert.False(t, converged([]Digest{a, a, b}))
}

func TestDiagnoseChoosesParser(t *testing.T) {
	dir := t.TempDir()
	blg := filepath.Join(dir, "doc.blg")
	require.NoError(t, os.WriteFile(blg, []byte("I found no \\bibstyle command---while reading file doc.aux\n"), 0o644))
	rep, err := Diagnose(blg, texlog.DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, texlog.ProgramBibtex, rep.Program)
	assert.Equal(t, "doc.aux", rep.Source)

	log := filepath.Join(dir, "doc.log")
	require.NoError(t, os.WriteFile(log, []byte("(./doc.tex\n! Missing $ inserted.\nl.4\n\n"), 0o644))
	rep, err = Diagnose(log, texlog.DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, texlog.ProgramLatex, rep.Program)
	assert.Equal(t, "./doc.tex", rep.Source)
}
