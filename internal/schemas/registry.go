package schemas

import (
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	files "github.com/jonathan/cold-message-generator/schemas"
)

// Names of the embedded schemas.
const (
	Summary   = "summary"
	LinkMap   = "link_map"
	UserInput = "user_input"
)

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

func fileName(name string) string {
	return name + ".schema.json"
}

// Source returns the raw JSON text of the named schema.
func Source(name string) (string, error) {
	data, err := fs.ReadFile(files.Files, fileName(name))
	if err != nil {
		return "", &SchemaLoadError{Name: name, Message: "schema not found", Cause: err}
	}
	return string(data), nil
}

// MustSource is like Source but panics if the schema does not exist.
func MustSource(name string) string {
	src, err := Source(name)
	if err != nil {
		panic(err)
	}
	return src
}

// List returns the names of all embedded schemas, sorted.
func List() []string {
	entries, err := fs.Glob(files.Files, "*.schema.json")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e, ".schema.json"))
	}
	sort.Strings(names)
	return names
}

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}

	src, err := Source(name)
	if err != nil {
		return nil, err
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Message: "schema compilation failed", Cause: err}
	}
	compiled[name] = s
	return s, nil
}

// Validate validates a JSON document against the named embedded schema.
// It returns *ValidationError when the document does not conform and
// *SchemaLoadError when the schema itself cannot be loaded.
func Validate(name string, doc []byte) error {
	s, err := load(name)
	if err != nil {
		return err
	}
	return validateWith(s, name, gojsonschema.NewBytesLoader(doc))
}

// ValidateValue validates an already-decoded value (anything encoding/json can
// marshal) against the named embedded schema.
func ValidateValue(name string, v interface{}) error {
	s, err := load(name)
	if err != nil {
		return err
	}
	return validateWith(s, name, gojsonschema.NewGoLoader(v))
}
