package compile

import (
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Digest is the BLAKE2b-512 hash of an .aux file.
type Digest [blake2b.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short is an abbreviated form for log lines.
func (d Digest) Short() string { return d.String()[:12] }

// digestFile hashes the content of path. A missing file hashes as empty:
// documents that never write an .aux converge after two passes.
func digestFile(path string) (Digest, error) {
	var d Digest
	h, _ := blake2b.New512(nil)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		copy(d[:], h.Sum(nil))
		return d, nil
	}
	if err != nil {
		return d, err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return d, err
	}
	copy(d[:], h.Sum(nil))
	return d, nil
}

// converged reports whether the last two digests of history are equal.
func converged(history []Digest) bool {
	n := len(history)
	return n > 1 && history[n-1] == history[n-2]
}
