package restclient

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/gabriel-vasile/mimetype"
)

// Part is one file of a multipart/form-data request.
type Part interface {
	// PartName is written as the filename of the part.
	PartName() string
	// MediaType is written as the Content-Type of the part.
	MediaType() string
	Bytes() ([]byte, error)
}

var partType = reflect.TypeOf((*Part)(nil)).Elem()

type bytesPart struct {
	name      string
	mediaType string
	data      []byte
}

// BytesPart returns a part with in-memory contents.
// Empty mediaType is detected from the data.
func BytesPart(name, mediaType string, data []byte) Part {
	if mediaType == "" {
		mediaType = mimetype.Detect(data).String()
	}
	return &bytesPart{name: name, mediaType: mediaType, data: data}
}

func (p *bytesPart) PartName() string       { return p.name }
func (p *bytesPart) MediaType() string      { return p.mediaType }
func (p *bytesPart) Bytes() ([]byte, error) { return p.data, nil }

// FilePart is a part read from disk when the request is built.
type FilePart string

func (p FilePart) PartName() string {
	return filepath.Base(string(p))
}

func (p FilePart) MediaType() string {
	mtype, err := mimetype.DetectFile(string(p))
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}

func (p FilePart) Bytes() ([]byte, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to read part file: %w", err)
	}
	return data, nil
}
