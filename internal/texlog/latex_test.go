package texlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string) ErrorReport {
	t.Helper()
	rep, err := ParseLatexLogFile(filepath.Join("testdata", name), DefaultWrapOptions())
	require.NoError(t, err)
	return rep
}

func excerpt(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestParseLatexLogFixtures(t *testing.T) {
	cases := []struct {
		file    string
		source  string
		excerpt string
	}{
		{
			file:   "latex1.log",
			source: "./article.tex",
			excerpt: excerpt(
				`! Undefined control sequence.`,
				`l.396         \begin{center}\foo`,
				``,
			),
		},
		{
			file:   "latex3.log",
			source: "./kwart_cirkelboog_e/divergent.inc.tex",
			excerpt: excerpt(
				`! LaTeX Error: Something's wrong--perhaps a missing \item.`,
				``,
				`l.2 \item E`,
				`           lektrisch veld opgewekt door continue ladingsverdeling: $\vec{E} ...`,
				``,
			),
		},
		{
			file:   "latex4.log",
			source: "./review.tex",
			excerpt: excerpt(
				`! Missing $ inserted.`,
				`<inserted text>`,
				`                $`,
				`l.116 \end{gather*}`,
				``,
			),
		},
		{
			file:   "latex5.log",
			source: "./solutions.tex",
			excerpt: excerpt(
				`! LaTeX Error: Something's wrong--perhaps a missing \item.`,
				``,
				`l.40 \end{enumerate}`,
				``,
			),
		},
		{
			file:   "latex6.log",
			source: "./review.tex",
			excerpt: excerpt(
				`! Missing $ inserted.`,
				`<inserted text>`,
				`                $`,
				`l.355`,
				``,
			),
		},
	}

	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			rep := parseFixture(t, tc.file)
			logPath := filepath.Join("testdata", tc.file)
			assert.Equal(t, ProgramLatex, rep.Program)
			assert.Equal(t, tc.source, rep.Source)
			assert.True(t, rep.Isolated)
			assert.Equal(t, logPath, rep.LogPath)
			// Every fixture stops inside an open file, so the unclosed warning follows the excerpt.
			assert.Equal(t, tc.excerpt+fmt.Sprintf(messageSuffix, logPath)+warnUnclosed, rep.Message)
		})
	}
}

func TestParseLatexLogWithoutMarkers(t *testing.T) {
	rep, err := ParseLatexLog(strings.NewReader("\nnot so much\n"), "article.log", DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, ProgramLatex, rep.Program)
	assert.Equal(t, UnknownSource, rep.Source)
	assert.False(t, rep.Isolated)
	assert.Equal(t, DefaultMessage("article.log"), rep.Message)
	assert.Contains(t, rep.Message, "article.log")
}

func TestParseLatexLogAttributesEnclosingFile(t *testing.T) {
	log := excerpt(
		`This is pdfTeX, Version 3.141592653-2.6-1.40.25`,
		`(./main.tex (./preamble.tex)`,
		`! Undefined control sequence.`,
		`l.3 \foo`,
		``,
		`)`,
	)
	rep, err := ParseLatexLog(strings.NewReader(log), "main.log", DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, "./main.tex", rep.Source)
	assert.True(t, strings.HasPrefix(rep.Message, "! Undefined control sequence.\nl.3 \\foo\n"))
	// Parsing ends with the excerpt, before main.tex is closed.
	assert.True(t, strings.HasSuffix(rep.Message, warnUnclosed))
}

func TestParseLatexLogBalancedWithoutError(t *testing.T) {
	rep, err := ParseLatexLog(strings.NewReader("(./a.tex (./b.tex) [1] (./c.tex))\n"), "a.log", DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, DefaultMessage("a.log"), rep.Message)
}

func TestParseLatexLogUnmatchedWarning(t *testing.T) {
	log := excerpt(
		`) stray close`,
		`! Emergency stop.`,
		`l.1`,
		``,
	)
	rep, err := ParseLatexLog(strings.NewReader(log), "x.log", DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, UnknownSource, rep.Source)
	assert.True(t, strings.HasSuffix(rep.Message, warnUnmatched))
	assert.NotContains(t, rep.Message, warnUnclosed)
}

func TestParseLatexLogBlankLineBeforeLocation(t *testing.T) {
	// A blank line ahead of "l." pauses recording; the location line resumes it.
	log := excerpt(
		`(./a.tex`,
		`! LaTeX Error: Environment foo undefined.`,
		``,
		`See the LaTeX manual or LaTeX Companion for explanation.`,
		`Type  H <return>  for immediate help.`,
		``,
		`l.7 \begin{foo}`,
		`               `,
		`Your command was ignored.`,
	)
	rep, err := ParseLatexLog(strings.NewReader(log), "a.log", DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, "./a.tex", rep.Source)
	assert.True(t, strings.HasPrefix(rep.Message, excerpt(
		`! LaTeX Error: Environment foo undefined.`,
		``,
		`l.7 \begin{foo}`,
		``,
		``,
	)), rep.Message)
	assert.NotContains(t, rep.Message, "Your command was ignored.")
}

func TestParseLatexLogDropsInvalidBytes(t *testing.T) {
	log := "(./main.tex\n! Undefined control sequence \xff\xfe\\caf\xe9.\nl.9\n\n"
	rep, err := ParseLatexLog(strings.NewReader(log), "main.log", DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, "./main.tex", rep.Source)
	assert.True(t, strings.HasPrefix(rep.Message, "! Undefined control sequence \\caf.\nl.9\n"), rep.Message)
}

func TestParseLatexLogFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")
	rep, err := ParseLatexLogFile(path, DefaultWrapOptions())
	require.NoError(t, err)
	assert.Equal(t, DefaultMessage(path), rep.Message)
}

func TestCaptureStateTransitions(t *testing.T) {
	p := newLatexParser(DefaultWrapOptions())
	steps := []struct {
		line string
		want captureState
	}{
		{"(./doc.tex", stateIdle},
		{"! Error one.", stateRecording},
		{"", stateIdle},
		{"noise", stateIdle},
		{"l.12 text", stateRecordingWithLocation},
		{"! Error two.", stateRecordingWithLocation},
		{"continued", stateRecordingWithLocation},
		{"", stateDone},
	}
	for i, s := range steps {
		more := p.step(s.line)
		assert.Equal(t, s.want, p.state, "step %d (%q): got %s", i, s.line, p.state)
		assert.Equal(t, s.want != stateDone, more)
	}
	assert.Equal(t, []string{"! Error one.", "", "l.12 text", "! Error two.", "continued", ""}, p.recorded)
}

func TestReportPrint(t *testing.T) {
	rep := ErrorReport{Program: ProgramLatex, Source: "./main.tex", LogPath: "main.log", Message: "! boom"}
	var sb strings.Builder
	rep.Print(&sb)
	out := sb.String()
	assert.Contains(t, out, "LaTeX ERROR")
	assert.Contains(t, out, "Log file:")
	assert.Contains(t, out, " main.log\n")
	assert.Contains(t, out, " ./main.tex\n")
	assert.True(t, strings.HasSuffix(out, "! boom\n"))
}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}
