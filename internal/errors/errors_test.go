package errors

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTexBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TexBuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("exit status 1"), CategoryLatex, SeverityFatal, "LaTeX compilation failed"),
			expected: "latex (fatal): LaTeX compilation failed: exit status 1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestTexBuildError_WithContext(t *testing.T) {
	err := NotConverged("main.tex", 5).WithContext("aux", "main.aux")

	require.NotNil(t, err.Context)
	assert.Equal(t, "main.tex", err.Context["document"])
	assert.Equal(t, 5, err.Context["repetitions"])
	assert.Equal(t, "main.aux", err.Context["aux"])
}

func TestIsCategoryFollowsWrapping(t *testing.T) {
	inner := BibtexFailed("paper.tex", fmt.Errorf("exit status 2"))
	wrapped := fmt.Errorf("build: %w", inner)

	assert.True(t, IsCategory(wrapped, CategoryBibtex))
	assert.False(t, IsCategory(wrapped, CategoryLatex))
	assert.False(t, IsCategory(fmt.Errorf("plain"), CategoryLatex))
	assert.Equal(t, CategoryBibtex, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}

func TestCLIErrorAdapter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewCLIErrorAdapter(false, logger)

	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 1, a.ExitCodeFor(fmt.Errorf("boom")))
	assert.Equal(t, 1, a.ExitCodeFor(NotConverged("main.tex", 2)))

	assert.Equal(t, "validation failed", a.FormatError(ValidationFailed("max_repetitions", "must be >= 1")))
	assert.Equal(t, "convergence: aux file did not converge", a.FormatError(NotConverged("main.tex", 2)))
	assert.Equal(t, "Error: boom", a.FormatError(fmt.Errorf("boom")))

	var buf bytes.Buffer
	a.out = &buf
	assert.Equal(t, 1, a.Handle(LatexFailed("main.tex", nil)))
	assert.Equal(t, "latex: LaTeX compilation failed\n", buf.String())
	assert.Equal(t, 0, a.Handle(nil))
}

func TestCLIErrorAdapterVerbose(t *testing.T) {
	a := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := FileSystemError("remove", fmt.Errorf("permission denied"))
	assert.Equal(t, "filesystem (fatal): filesystem operation failed: permission denied", a.FormatError(err))
}
