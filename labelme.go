package lblcount

// LabelMe specific functionality.

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LabelMeShape is a single labelled shape within a LabelMe file.
type LabelMeShape struct {
	Flags     map[string]json.RawMessage // Optional.
	Label     string
	Points    [][]float64
	ShapeType string
}

// LabelMeAnnotatedFile defines the LabelMe annotation structure for a single image.
type LabelMeAnnotatedFile struct {
	ImageHeight int
	ImagePath   string
	ImageWidth  int
	Shapes      []LabelMeShape
}

// The LabelMe shape type that carries a mask and outline.
const labelMePolygon = "polygon"

// The flag key for the difficult attribute.
const labelMeDifficultFlag = "difficult"

// MissingFieldError is returned when a required key is absent from a LabelMe document.
type MissingFieldError struct {
	Field string // The JSON key, e.g. "imagePath" or "shapes[1].label".
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// jsonObject is a decoded JSON object. Keys are matched exactly, unlike struct field tags which
// encoding/json matches case-insensitively.
type jsonObject map[string]json.RawMessage

// decode decodes the value of key into v. field names the key in errors. A null value leaves v
// unchanged.
func (o jsonObject) decode(key, field string, v interface{}) error {
	raw, ok := o[key]
	if !ok {
		return &MissingFieldError{Field: field}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

// FromLabelMe reads and parses the LabelMe annotation file at path.
//
// Bytes that are not valid UTF-8 are dropped before decoding. A missing required key, a JSON
// syntax error or a shape without points fails the whole file.
func FromLabelMe(path string) (Annotation, error) {
	enc, err := readFile(path)
	if err != nil {
		return Annotation{}, err
	}
	enc = bytes.ToValidUTF8(enc, nil)

	lmData, err := parseLabelMe(enc)
	if err != nil {
		return Annotation{}, fmt.Errorf("failed to parse LabelMe input from %q: %w", path, err)
	}

	a, err := lmData.toAnnotation()
	if err != nil {
		return Annotation{}, fmt.Errorf("failed to parse LabelMe input from %q: %w", path, err)
	}

	return a, nil
}

// parseLabelMe decodes a LabelMe document.
//
// A present key with a null value decodes to the zero value, except for shapes and points which
// must be arrays.
func parseLabelMe(enc []byte) (LabelMeAnnotatedFile, error) {
	var doc jsonObject
	if err := json.Unmarshal(enc, &doc); err != nil {
		return LabelMeAnnotatedFile{}, err
	}

	var f LabelMeAnnotatedFile
	var shapes []jsonObject
	for _, v := range []struct {
		key   string
		value interface{}
	}{
		{"imagePath", &f.ImagePath},
		{"imageWidth", &f.ImageWidth},
		{"imageHeight", &f.ImageHeight},
		{"shapes", &shapes},
	} {
		if err := doc.decode(v.key, v.key, v.value); err != nil {
			return LabelMeAnnotatedFile{}, err
		}
	}
	if shapes == nil {
		return LabelMeAnnotatedFile{}, fmt.Errorf("shapes is null, expected an array")
	}

	f.Shapes = make([]LabelMeShape, len(shapes))
	for i, s := range shapes {
		field := func(name string) string {
			return fmt.Sprintf("shapes[%d].%s", i, name)
		}

		shape := &f.Shapes[i]
		for _, v := range []struct {
			key   string
			value interface{}
		}{
			{"label", &shape.Label},
			{"points", &shape.Points},
			{"shape_type", &shape.ShapeType},
		} {
			if err := s.decode(v.key, field(v.key), v.value); err != nil {
				return LabelMeAnnotatedFile{}, err
			}
		}
		if shape.Points == nil {
			return LabelMeAnnotatedFile{}, fmt.Errorf("%s is null, expected an array",
				field("points"))
		}

		// An absent or null flags object behaves like an empty one.
		if _, ok := s["flags"]; ok {
			if err := s.decode("flags", field("flags"), &shape.Flags); err != nil {
				return LabelMeAnnotatedFile{}, err
			}
		}
	}

	return f, nil
}

// toAnnotation converts the LabelMe data to the intermediate representation.
func (f *LabelMeAnnotatedFile) toAnnotation() (Annotation, error) {
	a := Annotation{
		Filename: f.ImagePath,
		Objects:  make([]Object, 0, len(f.Shapes)),
		Size:     Size{Width: f.ImageWidth, Height: f.ImageHeight, Depth: Depth},
	}
	for i, s := range f.Shapes {
		o, err := s.toObject(i)
		if err != nil {
			return Annotation{}, err
		}
		a.Objects = append(a.Objects, o)
	}

	return a, nil
}

// toObject converts the shape at index i of its file to an Object.
func (s *LabelMeShape) toObject(i int) (Object, error) {
	field := func(name string) string {
		return fmt.Sprintf("shapes[%d].%s", i, name)
	}

	points := make([]Point, len(s.Points))
	for j, p := range s.Points {
		if len(p) < 2 {
			return Object{}, fmt.Errorf("%s[%d] has %d coordinates, expected 2",
				field("points"), j, len(p))
		}
		points[j] = Point{X: p[0], Y: p[1]}
	}

	bbox, err := bboxFromPoints(points)
	if err != nil {
		return Object{}, fmt.Errorf("%s: %w", field("points"), err)
	}

	o := Object{BBox: bbox, Name: s.Label}

	// A null difficult flag is false, like any other null value.
	if raw, ok := s.Flags[labelMeDifficultFlag]; ok {
		if err := json.Unmarshal(raw, &o.Difficult); err != nil {
			return Object{}, fmt.Errorf("%s: %w", field("flags."+labelMeDifficultFlag), err)
		}
	}

	if s.ShapeType == labelMePolygon {
		o.Mask = Mask{Color: i + 1, Valid: true} // 0 is the background.
		o.Polygon = points
	}

	return o, nil
}
