package extract

import (
	"context"
	"errors"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const batchConcurrency = 4

// FileBatch extracts many files with bounded concurrency. Failures are
// collected per file and never abort sibling files; both slices come back
// in input order.
func (e *Extractor) FileBatch(ctx context.Context, paths []string) ([]Result, []Failure) {
	results := make([]*Result, len(paths))
	failures := make([]*Failure, len(paths))

	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			failures[i] = &Failure{File: filepath.Base(path), Err: err}
			continue
		}
		g.Go(func() error {
			res, err := e.File(path)
			if err != nil {
				var f *Failure
				if !errors.As(err, &f) {
					f = &Failure{File: filepath.Base(path), Err: err}
				}
				failures[i] = f
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	ok := make([]Result, 0, len(paths))
	bad := make([]Failure, 0)
	for i := range paths {
		switch {
		case results[i] != nil:
			ok = append(ok, *results[i])
		case failures[i] != nil:
			bad = append(bad, *failures[i])
		}
	}
	return ok, bad
}
