package restclient

import (
	"net/url"
	"strings"

	rcerrors "github.com/starius/restclient/errors"
)

// findURLKeys returns keys of all {key} tokens of the template in order.
func findURLKeys(mask string) []string {
	var result []string
	rest := mask
	for {
		start := strings.IndexByte(rest, '{')
		if start == -1 {
			return result
		}
		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			return result
		}
		if key := rest[start+1 : start+end]; key != "" {
			result = append(result, key)
		}
		rest = rest[start+end+1:]
	}
}

// buildURL substitutes every {key} token of the template.
// A token without a value is an error: the URL would be malformed.
func buildURL(mask string, param2value map[string]string) (string, error) {
	var sb strings.Builder
	rest := mask
	for {
		start := strings.IndexByte(rest, '{')
		if start == -1 {
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			break
		}
		key := rest[start+1 : start+end]
		value, has := param2value[key]
		if !has {
			return "", rcerrors.Config("unresolved path parameter {%s} in %s", key, mask)
		}
		sb.WriteString(rest[:start])
		sb.WriteString(url.PathEscape(value))
		rest = rest[start+end+1:]
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// encodeValues percent-encodes keys and values independently and joins
// them as key=value&key=value, keys sorted. Used for query strings and
// form-urlencoded bodies.
func encodeValues(values url.Values) string {
	return values.Encode()
}
