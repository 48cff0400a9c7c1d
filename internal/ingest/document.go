// Package ingest reads the JSON element export produced by the model parser.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
)

// ErrEmptyInput is returned when the export contains no JSON value at all.
var ErrEmptyInput = errors.New("empty element export")

// Document is one model export: building metadata plus its elements.
type Document struct {
	Name     string                      `json:"name,omitempty"`
	Schema   string                      `json:"schema,omitempty"`
	Project  string                      `json:"project,omitempty"`
	Building string                      `json:"building,omitempty"`
	Site     string                      `json:"site,omitempty"`
	Elements []quantity.RawElementRecord `json:"elements"`
}

// Info returns the metadata carried into the snapshot.
func (d *Document) Info() aggregate.ModelInfo {
	return aggregate.ModelInfo{
		Name:     d.Name,
		Schema:   d.Schema,
		Project:  d.Project,
		Building: d.Building,
		Site:     d.Site,
	}
}

// Decode reads an export. Both the document form and a bare array of
// element records are accepted; a UTF-8 or UTF-16 byte order mark is
// honored. Elements without an id are numbered by position.
func Decode(r io.Reader) (*Document, error) {
	utf := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, utf))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	doc := &Document{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if data[0] == '[' {
		err = dec.Decode(&doc.Elements)
	} else {
		err = dec.Decode(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	if doc.Elements == nil {
		doc.Elements = []quantity.RawElementRecord{}
	}
	for i := range doc.Elements {
		if doc.Elements[i].ID == "" {
			doc.Elements[i].ID = "#" + strconv.Itoa(i+1)
		}
	}
	return doc, nil
}

// ReadFile decodes the export at path. The document name defaults to the
// file name.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return doc, nil
}

// Encode writes the canonical JSON form of the document.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Fingerprint is a digest of the canonical document. Identical exports
// yield identical fingerprints regardless of key order or whitespace.
func (d *Document) Fingerprint() (string, error) {
	data, err := d.Encode()
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
