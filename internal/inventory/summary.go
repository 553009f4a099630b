// Package inventory writes and verifies inventory files: one line per file
// with its size, mode, BLAKE2b digest and path relative to the inventory.
package inventory

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	sizeWidth  = 15
	modeWidth  = 10
	digestHex  = 2 * blake2b.Size
	minLineLen = sizeWidth + 1 + modeWidth + 1 + digestHex + 1 + 1
)

// Summary is one inventory record. Symbolic links are not followed: they
// have no size and their digest covers the link target string.
type Summary struct {
	Size    int64
	HasSize bool
	Mode    string
	Digest  []byte
	Path    string
}

// Summarize computes the record for path, with Path relative to root.
func Summarize(path, root string) (Summary, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Summary{}, err
	}
	if fi.IsDir() {
		return Summary{}, fmt.Errorf("%s is a directory", path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Mode: fileMode(fi.Mode()), Path: filepath.ToSlash(rel)}

	h, _ := blake2b.New512(nil)
	if fi.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return Summary{}, err
		}
		_, _ = io.WriteString(h, target)
	} else {
		s.Size, s.HasSize = fi.Size(), true
		f, err := os.Open(path)
		if err != nil {
			return Summary{}, err
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return Summary{}, err
		}
	}
	s.Digest = h.Sum(nil)
	return s, nil
}

// String formats the record as an inventory line, without newline.
func (s Summary) String() string {
	size := strings.Repeat(" ", sizeWidth)
	if s.HasSize {
		size = fmt.Sprintf("%*d", sizeWidth, s.Size)
	}
	return size + " " + s.Mode + " " + hex.EncodeToString(s.Digest) + " " + s.Path
}

// ParseSummary is the inverse of Summary.String.
func ParseSummary(line string) (Summary, error) {
	if len(line) < minLineLen {
		return Summary{}, fmt.Errorf("line too short for an inventory record: %q", line)
	}
	var s Summary
	if size := line[:sizeWidth]; strings.TrimSpace(size) != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
		if err != nil {
			return Summary{}, fmt.Errorf("invalid size in %q: %w", line, err)
		}
		s.Size, s.HasSize = n, true
	}
	off := sizeWidth + 1
	s.Mode = line[off : off+modeWidth]
	off += modeWidth + 1
	digest, err := hex.DecodeString(line[off : off+digestHex])
	if err != nil {
		return Summary{}, fmt.Errorf("invalid digest in %q: %w", line, err)
	}
	s.Digest = digest
	s.Path = strings.TrimSpace(line[off+digestHex+1:])
	return s, nil
}

// Check reports the first property in which s differs from ref.
func (s Summary) Check(ref Summary) error {
	switch {
	case s.HasSize != ref.HasSize || s.Size != ref.Size:
		return fmt.Errorf("file size should be %s but got %s: %s", sizeString(ref), sizeString(s), s.Path)
	case s.Mode != ref.Mode:
		return fmt.Errorf("file mode should be %s but got %s: %s", ref.Mode, s.Mode, s.Path)
	case string(s.Digest) != string(ref.Digest):
		return fmt.Errorf("file digest mismatch: %s", s.Path)
	}
	return nil
}

func sizeString(s Summary) string {
	if !s.HasSize {
		return "none"
	}
	return strconv.FormatInt(s.Size, 10)
}

// fileMode renders m like ls -l, which is what the inventory format expects.
// fs.FileMode.String differs for links and special bits.
func fileMode(m fs.FileMode) string {
	var b [modeWidth]byte
	switch {
	case m&fs.ModeDir != 0:
		b[0] = 'd'
	case m&fs.ModeSymlink != 0:
		b[0] = 'l'
	case m&fs.ModeNamedPipe != 0:
		b[0] = 'p'
	case m&fs.ModeSocket != 0:
		b[0] = 's'
	case m&fs.ModeCharDevice != 0:
		b[0] = 'c'
	case m&fs.ModeDevice != 0:
		b[0] = 'b'
	default:
		b[0] = '-'
	}
	const rwx = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if m&(1<<uint(8-i)) != 0 {
			b[i+1] = rwx[i]
		} else {
			b[i+1] = '-'
		}
	}
	special := func(idx int, set bool, lower, upper byte) {
		if !set {
			return
		}
		if b[idx] == 'x' {
			b[idx] = lower
		} else {
			b[idx] = upper
		}
	}
	special(3, m&fs.ModeSetuid != 0, 's', 'S')
	special(6, m&fs.ModeSetgid != 0, 's', 'S')
	special(9, m&fs.ModeSticky != 0, 't', 'T')
	return string(b[:])
}
