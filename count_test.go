package lblcount

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labelMeDoc returns a LabelMe document with numShapes rectangles.
func labelMeDoc(imagePath string, numShapes int) string {
	shapes := make([]string, numShapes)
	for i := range shapes {
		shapes[i] = fmt.Sprintf(`{"label": "obj%d", "flags": {}, "points": [[%d, 1], [%d, 5]],`+
			` "shape_type": "rectangle"}`, i, i, i+3)
	}
	return fmt.Sprintf(`{"imagePath": %q, "imageWidth": 64, "imageHeight": 48, "shapes": [%s]}`,
		imagePath, strings.Join(shapes, ", "))
}

func TestCountSumsShapes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.json", labelMeDoc("one.jpg", 2))
	writeFile(t, dir, "sub/two.json", labelMeDoc("two.jpg", 3))

	paths, err := FindFiles(dir, ".json")
	require.NoError(t, err)

	counts, err := Count(paths, CountOptions{})
	require.NoError(t, err)
	assert.Equal(t, Counts{Files: 2, BBoxes: 5}, counts)
}

func TestCountEmpty(t *testing.T) {
	var progress bytes.Buffer
	counts, err := Count(nil, CountOptions{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestCountAbortsOnFirstBadFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.json", labelMeDoc("a.jpg", 1))
	bad := writeFile(t, dir, "b.json", `{"imageWidth": 1, "imageHeight": 1, "shapes": []}`)
	last := writeFile(t, dir, "c.json", labelMeDoc("c.jpg", 4))

	var visited []string
	counts, err := Count([]string{good, bad, last}, CountOptions{
		Visit: func(path string, _ Annotation) error {
			visited = append(visited, path)
			return nil
		},
	})

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "unexpected error: %v", err)
	assert.Equal(t, "imagePath", missing.Field)
	assert.Equal(t, Counts{}, counts)
	assert.Equal(t, []string{good}, visited)
}

func TestCountAbortsOnDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", labelMeDoc("a.jpg", 2))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b.json"), 0755))

	paths, err := FindFiles(dir, ".json")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	counts, err := Count(paths, CountOptions{})
	assert.Error(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestCountVisitsInOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 3; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("%d.json", i),
			labelMeDoc(fmt.Sprintf("%d.jpg", i), i)))
	}

	var progress bytes.Buffer
	var filenames []string
	counts, err := Count(paths, CountOptions{
		Progress: &progress,
		Visit: func(_ string, a Annotation) error {
			filenames = append(filenames, a.Filename)
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, Counts{Files: 3, BBoxes: 3}, counts)
	assert.Equal(t, []string{"0.jpg", "1.jpg", "2.jpg"}, filenames)
	assert.NotZero(t, progress.Len())
}

func TestCountVisitError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.json", labelMeDoc("a.jpg", 1))
	errVisit := errors.New("visit failed")

	_, err := Count([]string{path}, CountOptions{
		Visit: func(string, Annotation) error { return errVisit },
	})
	assert.True(t, errors.Is(err, errVisit), "unexpected error: %v", err)
}

func TestCounterAdd(t *testing.T) {
	var c Counter
	c.Add(Annotation{Objects: []Object{{BBox: BBox{1, 2, 3, 4}}, {BBox: BBox{5, 6, 7, 8}}}})
	c.Add(Annotation{})

	assert.Equal(t, Counts{Files: 2, BBoxes: 2}, c.Counts())
	assert.Equal(t, []BBox{{1, 2, 3, 4}, {5, 6, 7, 8}}, c.BBoxes)
}
