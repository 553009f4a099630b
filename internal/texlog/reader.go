package texlog

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// dropInvalid removes ill-formed UTF-8. TeX writes logs in whatever encoding
// the input used, and an 8-bit byte must not abort diagnostics.
func dropInvalid() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError }))
}

// NewReader wraps r so that invalid byte sequences are silently discarded.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, dropInvalid())
}

// eachLine calls fn with every line of r, terminators removed, until fn
// returns false or input ends.
func eachLine(r io.Reader, fn func(line string) bool) error {
	br := bufio.NewReader(NewReader(r))
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if !fn(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
