package inventory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// SummarizeAll computes the records of files concurrently, relative to root.
// Records are returned sorted by path with duplicates removed.
func SummarizeAll(ctx context.Context, root string, files []string) ([]Summary, error) {
	abs := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		abs = append(abs, p)
	}
	slices.Sort(abs)
	abs = slices.Compact(abs)

	out := make([]Summary, len(abs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range abs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := Summarize(p, root)
			if err != nil {
				return fmt.Errorf("summarize %s: %w", p, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

// Write creates the inventory file at path covering files. Relative paths in
// the inventory are relative to the directory of path.
func Write(ctx context.Context, path string, files []string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	records, err := SummarizeAll(ctx, filepath.Dir(abs), files)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return os.WriteFile(abs, []byte(sb.String()), 0o644)
}

// Read parses an inventory file.
func Read(path string) ([]Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []Summary
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		s, err := ParseSummary(sc.Text())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Verify recomputes every record of the inventory at path and returns one
// error per mismatching or unreadable file.
func Verify(ctx context.Context, path string) ([]error, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	refs, err := Read(abs)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(abs)
	problems := make([]error, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cur, err := Summarize(filepath.Join(root, filepath.FromSlash(ref.Path)), root)
			if err != nil {
				problems[i] = err
				return nil
			}
			problems[i] = cur.Check(ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []error
	for _, p := range problems {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}
