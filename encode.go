package restclient

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// newBoundary returns a fresh random 128-bit multipart boundary.
func newBoundary() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart writes one boundary-delimited section per part, keys
// sorted, followed by the --boundary-- terminator.
func encodeMultipart(boundary string, parts map[string]Part) ([]byte, error) {
	keys := make([]string, 0, len(parts))
	for key := range parts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		part := parts[key]
		data, err := part.Bytes()
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", key, err)
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n", quoteEscaper.Replace(key), quoteEscaper.Replace(part.PartName()))
		fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", part.MediaType())
		buf.Write(data)
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--", boundary)
	return buf.Bytes(), nil
}
