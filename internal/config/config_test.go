package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuild/internal/errors"
)

func envMap(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRepetitions, cfg.Latex.MaxRepetitions)
	assert.Equal(t, DefaultWrapWidth, cfg.Diagnostics.Width())
	assert.Equal(t, DefaultWrapSuffixes, cfg.Diagnostics.WrapSuffixes)
	assert.Equal(t, DeclareStdout, cfg.Declare.Sink)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEXBUILD_TEST_ENGINE", "lualatex")
	path := filepath.Join(t.TempDir(), "texbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
latex:
  executable: ${TEXBUILD_TEST_ENGINE}
  max_repetitions: 3
bibtex:
  run: true
diagnostics:
  wrap_width: 100
declare:
  sink: JSON
logging:
  level: Debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lualatex", cfg.Latex.Executable)
	assert.Equal(t, 3, cfg.Latex.MaxRepetitions)
	assert.True(t, cfg.Bibtex.Run)
	assert.Equal(t, 100, cfg.Diagnostics.Width())
	assert.Equal(t, DeclareJSON, cfg.Declare.Sink)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, DefaultExcludes, cfg.Scan.Exclude)
}

func TestZeroWrapWidthDisablesHeuristic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diagnostics:\n  wrap_width: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Diagnostics.WrapWidth)
	assert.Equal(t, 0, cfg.Diagnostics.Width())

	cc, err := Resolve(cfg, Overrides{}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, cc.WrapWidth)

	def, err := Resolve(Default(), Overrides{}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultWrapWidth, def.WrapWidth)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("latex: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestResolvePrecedence(t *testing.T) {
	cfg := Default()
	cfg.Latex.Executable = "xelatex"
	cfg.Bibtex.Executable = "bibtex8"

	cc, err := Resolve(cfg, Overrides{}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "xelatex", cc.LatexPath, "config beats default")
	assert.Equal(t, "bibtex8", cc.BibtexPath)

	cc, err = Resolve(cfg, Overrides{}, envMap(map[string]string{EnvLatex: "lualatex", EnvBibtexLegacy: "biber"}))
	require.NoError(t, err)
	assert.Equal(t, "lualatex", cc.LatexPath, "env beats config")
	assert.Equal(t, "biber", cc.BibtexPath)

	cc, err = Resolve(cfg, Overrides{Latex: "/opt/tex/pdflatex", MaxRepetitions: 2}, envMap(map[string]string{EnvLatex: "lualatex"}))
	require.NoError(t, err)
	assert.Equal(t, "/opt/tex/pdflatex", cc.LatexPath, "flag beats env")
	assert.Equal(t, 2, cc.MaxRepetitions)

	cc, err = Resolve(Default(), Overrides{}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultLatex, cc.LatexPath)
	assert.Equal(t, DefaultBibtex, cc.BibtexPath)
	assert.Equal(t, DefaultMaxRepetitions, cc.MaxRepetitions)
}

func TestResolveValidation(t *testing.T) {
	_, err := Resolve(Default(), Overrides{MaxRepetitions: -1}, envMap(nil))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = Resolve(Default(), Overrides{Declare: "carrier-pigeon"}, envMap(nil))
	require.Error(t, err)

	_, err = Resolve(Default(), Overrides{Declare: "nats"}, envMap(nil))
	require.Error(t, err, "nats sink needs a URL")

	cfg := Default()
	cfg.Declare.NATSURL = "nats://127.0.0.1:4222"
	cc, err := Resolve(cfg, Overrides{Declare: "nats"}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DeclareNATS, cc.Declare.Sink)
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false), "refuses to overwrite without force")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
