package lblcount

// TFRecord object detection specific functionality.

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// toTFFeatureMap converts a single annotation to the TFRecord object detection features.
//
// Bounding boxes are normalised by the image size. No image data is read.
func toTFFeatureMap(a Annotation) (TFFeatureMap, error) {
	if a.Size.Width <= 0 || a.Size.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d for %q", a.Size.Width, a.Size.Height,
			a.Filename)
	}

	// Prepare the feature map for the per file data.
	f := make(TFFeatureMap, 16)
	f["image/height"] = a.Size.Height
	f["image/width"] = a.Size.Width
	f["image/depth"] = a.Size.Depth
	f["image/filename"] = a.Filename
	f["image/source_id"] = a.Filename

	// Prepare the per object data.
	numObjects := len(a.Objects)
	xmins := make([]float32, numObjects)
	ymins := make([]float32, numObjects)
	xmaxs := make([]float32, numObjects)
	ymaxs := make([]float32, numObjects)
	classes := make([]string, numObjects)
	difficult := make([]int64, numObjects)
	maskColors := make([]int64, numObjects)
	width, height := float32(a.Size.Width), float32(a.Size.Height)
	for i, o := range a.Objects {
		xmins[i] = float32(o.BBox.Left) / width
		ymins[i] = float32(o.BBox.Top) / height
		xmaxs[i] = float32(o.BBox.Right) / width
		ymaxs[i] = float32(o.BBox.Bottom) / height
		classes[i] = o.Name
		if o.Difficult {
			difficult[i] = 1
		}
		if o.Mask.Valid {
			maskColors[i] = int64(o.Mask.Color)
		}
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/difficult"] = difficult
	f["image/object/mask/color"] = maskColors

	return f, nil
}

// TFRecordWriter does a streaming conversion, serialisation and file write of annotations to a
// TFRecord file, one tensorflow.Example per annotation.
type TFRecordWriter struct {
	buf  *bufio.Writer
	file *os.File
	n    int // The number of examples written.
	path string
}

// NewTFRecordWriter creates, or truncates, the TFRecord file at path.
func NewTFRecordWriter(path string) (*TFRecordWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create TFRecord file %q: %v", path, err)
	}

	return &TFRecordWriter{buf: bufio.NewWriter(file), file: file, path: path}, nil
}

// Write converts a to an example and appends it to the file.
func (w *TFRecordWriter) Write(a Annotation) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	features, err := toTFFeatureMap(a)
	if err != nil {
		return err
	}
	tfExample := example.New(features)

	if err := writeTFRecordExample(w.buf, tfExample); err != nil {
		return fmt.Errorf("failed to write example for %q: %v", a.Filename, err)
	}
	w.n++

	return nil
}

// Close flushes and closes the file.
func (w *TFRecordWriter) Close() (err error) {
	defer closeWithErrCheck(w.file, &err)

	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush %q: %v", w.path, err)
	}
	log.Printf("Wrote %d examples to %s", w.n, w.path)

	return nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}
