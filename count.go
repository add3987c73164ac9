package lblcount

// Aggregation of the parsed annotations into counts.

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Counts are the totals of a counting pass.
type Counts struct {
	Files  int // The number of parsed annotation files.
	BBoxes int // The number of bounding boxes, one per object.
}

// Counter accumulates annotations one at a time. Only the bounding boxes are retained.
type Counter struct {
	BBoxes []BBox
	Files  int
}

// Add counts the file a and appends the bounding boxes of all its objects.
func (c *Counter) Add(a Annotation) {
	c.Files++
	for _, o := range a.Objects {
		c.BBoxes = append(c.BBoxes, o.BBox)
	}
}

// Counts returns the current totals.
func (c *Counter) Counts() Counts {
	return Counts{Files: c.Files, BBoxes: len(c.BBoxes)}
}

// CountOptions configure Count.
type CountOptions struct {
	// Progress receives a progress bar that advances once per file. Nil disables it.
	Progress io.Writer
	// Visit is called for each parsed annotation, in path order. An error aborts the count.
	Visit func(path string, a Annotation) error
}

// Count parses the LabelMe files at paths, in order, and returns the totals.
//
// The first file that fails to parse aborts the count; no partial totals are returned.
func Count(paths []string, opts CountOptions) (Counts, error) {
	var bar *progressbar.ProgressBar
	if opts.Progress != nil && len(paths) > 0 {
		bar = newProgressBar(opts.Progress, len(paths))
	}

	var c Counter
	for _, path := range paths {
		a, err := FromLabelMe(path)
		if err != nil {
			return Counts{}, err
		}
		if opts.Visit != nil {
			if err := opts.Visit(path, a); err != nil {
				return Counts{}, fmt.Errorf("failed to process %q: %w", path, err)
			}
		}
		c.Add(a)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return c.Counts(), nil
}

// newProgressBar returns a file counting progress bar of size n that renders to w.
func newProgressBar(w io.Writer, n int) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Counting"),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}
