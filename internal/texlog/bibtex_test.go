package texlog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBibtexLogFixtures(t *testing.T) {
	cases := []struct {
		file     string
		source   string
		message  string
		isolated bool
	}{
		{
			file:   "bibtex1.blg",
			source: "references.bib",
			message: excerpt(
				"I was expecting a `{' or a `('---line 12 of file references.bib",
				" :",
				" : @article{SomeAuthor1999,",
				"(Error may have been on previous line)",
				"I'm skipping whatever remains of this entry",
			),
			isolated: true,
		},
		{
			file:    "bibtex2.blg",
			source:  UnknownSource,
			message: DefaultMessage(filepath.Join("testdata", "bibtex2.blg")),
		},
		{
			file:     "bibtex3.blg",
			source:   "reply.aux",
			message:  `I found no \bibstyle command---while reading file reply.aux`,
			isolated: true,
		},
		{
			file:   "bibtex4.blg",
			source: "article.aux",
			message: excerpt(
				"White space in argument---line 78 of file article.aux",
				` : \citation{lagauche_thermodynamic_2017`,
				` :                                       pigeon_revisiting_2022}`,
				"I'm skipping whatever remains of this command",
			),
			isolated: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			rep, err := ParseBibtexLogFile(filepath.Join("testdata", tc.file))
			require.NoError(t, err)
			assert.Equal(t, ProgramBibtex, rep.Program)
			assert.Equal(t, tc.source, rep.Source)
			assert.Equal(t, tc.message, rep.Message)
			assert.Equal(t, tc.isolated, rep.Isolated)
		})
	}
}

func TestParseBibtexLogMissingData(t *testing.T) {
	log := "The top-level auxiliary file: thesis.aux\nI found no \\bibdata command---while reading file thesis.aux\n"
	rep, err := ParseBibtexLog(strings.NewReader(log), "thesis.blg")
	require.NoError(t, err)
	assert.Equal(t, "thesis.aux", rep.Source)
	assert.True(t, rep.Isolated)
}

func TestParseBibtexLogFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.blg")
	rep, err := ParseBibtexLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, UnknownSource, rep.Source)
	assert.Equal(t, DefaultMessage(path), rep.Message)
	assert.False(t, rep.Isolated)
}
