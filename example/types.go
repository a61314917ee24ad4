package example

//go:generate go run ./gen/...

type Book struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Year   int      `json:"year,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// BookFilter is expanded into query parameters.
type BookFilter struct {
	Author string   `schema:"author,omitempty"`
	Tags   []string `schema:"tag,omitempty"`
	Page   int      `schema:"page,omitempty"`
}

type CoverInfo struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Size      int    `json:"size"`
}

// ErrorResponse is the body of every non-2xx response of the book server.
type ErrorResponse struct {
	Error string `json:"error"`
}
