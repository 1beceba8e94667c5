package wavmeta

import (
	"path/filepath"
	"strings"
)

// Field identifies a metadata field of a Record that extractors may fill.
type Field int

const (
	FieldShow Field = iota
	FieldScene
	FieldTake
	FieldCategory
	FieldSubcategory
	FieldSlate
	FieldNote
	FieldWildtrack
	FieldCircled
)

// Record is the metadata extracted from a single WAV file.
//
// Every field defaults to the empty string and is never "missing": callers
// can rely on zero-value semantics without nil checks. Error is populated
// when extraction failed; a record with Error set may still carry fields
// recovered before the failure point.
type Record struct {
	// Filename is the basename of the source file, always populated.
	Filename string
	Show     string
	// Scene may contain embedded punctuation, e.g. "5.14D".
	Scene string
	// Take is usually numeric-looking but is kept verbatim.
	Take        string
	Category    string
	Subcategory string
	Slate       string
	Note        string
	Wildtrack   string
	// Circled is a boolean-like "good take" marker.
	Circled  string
	FilePath string
	// Error holds the failure text when extraction did not fully succeed.
	Error string
}

func newRecord(path string) Record {
	return Record{
		Filename: filepath.Base(path),
		FilePath: path,
	}
}

// fill sets a field if it is still empty, enforcing first-found-wins
// priority across extractors. It reports whether the value was taken.
func (r *Record) fill(f Field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	p := r.fieldPtr(f)
	if p == nil || *p != "" {
		return false
	}

	*p = value

	return true
}

func (r *Record) fieldPtr(f Field) *string {
	switch f {
	case FieldShow:
		return &r.Show
	case FieldScene:
		return &r.Scene
	case FieldTake:
		return &r.Take
	case FieldCategory:
		return &r.Category
	case FieldSubcategory:
		return &r.Subcategory
	case FieldSlate:
		return &r.Slate
	case FieldNote:
		return &r.Note
	case FieldWildtrack:
		return &r.Wildtrack
	case FieldCircled:
		return &r.Circled
	default:
		return nil
	}
}

// FieldNames lists the Get keys in display order.
var FieldNames = []string{
	"Filename",
	"Show",
	"Scene",
	"Take",
	"Category",
	"Subcategory",
	"Slate",
	"Note",
	"Wildtrack",
	"Circled",
	"FilePath",
	"Error",
}

// Get returns the named field, or the empty string for unknown names.
func (r Record) Get(name string) string {
	switch name {
	case "Filename":
		return r.Filename
	case "Show":
		return r.Show
	case "Scene":
		return r.Scene
	case "Take":
		return r.Take
	case "Category":
		return r.Category
	case "Subcategory":
		return r.Subcategory
	case "Slate":
		return r.Slate
	case "Note":
		return r.Note
	case "Wildtrack":
		return r.Wildtrack
	case "Circled":
		return r.Circled
	case "FilePath":
		return r.FilePath
	case "Error":
		return r.Error
	default:
		return ""
	}
}
