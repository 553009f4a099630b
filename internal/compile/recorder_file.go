package compile

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/texbuild/internal/util/sets"
)

// recorderFile is the content of a .fls file written by "-recorder".
type recorderFile struct {
	Inputs  sets.Set[string]
	Outputs sets.Set[string]
}

// parseRecorder reads INPUT and OUTPUT lines. Relative paths are resolved
// against the PWD line when present, else against dir. Other lines are ignored.
func parseRecorder(r io.Reader, dir string) (recorderFile, error) {
	rec := recorderFile{Inputs: sets.New[string](), Outputs: sets.New[string]()}
	base := dir
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		kind, path, ok := strings.Cut(line, " ")
		if !ok || path == "" {
			continue
		}
		switch kind {
		case "PWD":
			base = path
		case "INPUT":
			rec.Inputs.Add(resolveAgainst(base, path))
		case "OUTPUT":
			rec.Outputs.Add(resolveAgainst(base, path))
		}
	}
	return rec, sc.Err()
}

func resolveAgainst(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
