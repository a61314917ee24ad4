package restclient

import (
	"net/http"
	"net/url"

	rcerrors "github.com/starius/restclient/errors"
)

// Request is a fully resolved outgoing request, ready for a Transport.
type Request struct {
	Method      string
	URL         string
	Header      http.Header
	ContentType string
	// Body is nil when the request carries no payload.
	Body []byte
}

type buildInput struct {
	baseURL      string
	path         string
	verb         string
	contentType  string
	query        url.Values
	pathParams   map[string]string
	headers      map[string]string
	multipart    map[string]Part
	form         url.Values
	body         string
	clientHeader map[string]string
}

// buildRequest assembles URL, headers and payload of one call.
func buildRequest(in *buildInput) (*Request, error) {
	if !knownVerbs[in.verb] {
		return nil, rcerrors.Config("request method %q is undefined", in.verb)
	}

	path, err := buildURL(in.path, in.pathParams)
	if err != nil {
		return nil, err
	}
	fullURL := in.baseURL + path
	if len(in.query) != 0 {
		fullURL += "?" + encodeValues(in.query)
	}
	if _, err := url.Parse(fullURL); err != nil {
		return nil, rcerrors.Config("malformed request URL: %v", err)
	}

	header := make(http.Header, len(in.clientHeader)+len(in.headers)+1)
	for k, v := range in.clientHeader {
		header.Set(k, v)
	}
	for k, v := range in.headers {
		header.Set(k, v)
	}

	contentType := in.contentType
	var body []byte
	switch contentType {
	case ContentMultipart:
		boundary := newBoundary()
		body, err = encodeMultipart(boundary, in.multipart)
		if err != nil {
			return nil, rcerrors.Request(err)
		}
		contentType += "; boundary=" + boundary
	case ContentForm:
		body = []byte(encodeValues(in.form))
	default:
		if len(in.body) != 0 {
			body = []byte(in.body)
		}
	}
	header.Set("Content-Type", contentType)

	if in.verb == http.MethodGet || in.verb == http.MethodDelete {
		body = nil
	}

	return &Request{
		Method:      in.verb,
		URL:         fullURL,
		Header:      header,
		ContentType: contentType,
		Body:        body,
	}, nil
}
