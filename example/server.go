package example

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/starius/restclient/auth"
)

const pageSize = 10

// BookServer is an in-memory book catalog served over HTTP.
type BookServer struct {
	logger *zap.Logger
	secret []byte
	now    func() time.Time

	mu     sync.Mutex
	books  map[string]Book
	covers map[string]CoverInfo
	nextID int
}

// NewBookServer creates an empty catalog. If secret is not empty, every
// request must carry a bearer token signed with it.
func NewBookServer(logger *zap.Logger, secret []byte) *BookServer {
	return &BookServer{
		logger: logger,
		secret: secret,
		now:    time.Now,
		books:  make(map[string]Book),
		covers: make(map[string]CoverInfo),
		nextID: 1,
	}
}

func (s *BookServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books", s.listBooks)
	mux.HandleFunc("GET /books.csv", s.exportBooks)
	mux.HandleFunc("GET /book/{id}", s.getBook)
	mux.HandleFunc("POST /book", s.createBook)
	mux.HandleFunc("POST /book/form", s.createBookForm)
	mux.HandleFunc("PUT /book/{id}", s.updateBook)
	mux.HandleFunc("DELETE /book/{id}", s.deleteBook)
	mux.HandleFunc("PUT /book/{id}/cover", s.uploadCover)
	mux.HandleFunc("POST /since", s.since)
	return s.authenticate(mux)
}

func (s *BookServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.secret) != 0 {
			header := r.Header.Get(auth.HttpHeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				s.fail(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if _, err := auth.Verify(token, s.secret); err != nil {
				s.fail(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}
		}
		s.logger.Debug("request", zap.String("method", r.Method), zap.String("url", r.URL.String()))
		next.ServeHTTP(w, r)
	})
}

func (s *BookServer) fail(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}

func (s *BookServer) writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// sorted returns books matching author and all tags, ordered by ID.
func (s *BookServer) sorted(author string, tags []string) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Book, 0, len(s.books))
	for _, book := range s.books {
		if author != "" && book.Author != author {
			continue
		}
		if !hasTags(book, tags) {
			continue
		}
		result = append(result, book)
	}
	sort.Slice(result, func(i, j int) bool {
		a, _ := strconv.Atoi(result[i].ID)
		b, _ := strconv.Atoi(result[j].ID)
		return a < b
	})
	return result
}

func hasTags(book Book, tags []string) bool {
	for _, tag := range tags {
		found := false
		for _, t := range book.Tags {
			if t == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *BookServer) listBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	books := s.sorted(query.Get("author"), query["tag"])
	page := 0
	if p := query.Get("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil || page < 0 {
			s.fail(w, http.StatusBadRequest, "bad page")
			return
		}
	}
	start := page * pageSize
	if start > len(books) {
		start = len(books)
	}
	end := start + pageSize
	if end > len(books) {
		end = len(books)
	}
	s.writeJSON(w, http.StatusOK, books[start:end])
}

func (s *BookServer) exportBooks(w http.ResponseWriter, r *http.Request) {
	books := s.sorted(r.URL.Query().Get("author"), nil)
	w.Header().Set("Content-Type", "text/csv")
	writer := csv.NewWriter(w)
	rows := [][]string{{"id", "title", "author", "year"}}
	for _, book := range books {
		rows = append(rows, []string{book.ID, book.Title, book.Author, strconv.Itoa(book.Year)})
	}
	if err := writer.WriteAll(rows); err != nil {
		s.logger.Warn("failed to write csv", zap.Error(err))
	}
}

func (s *BookServer) getBook(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	book, has := s.books[r.PathValue("id")]
	s.mu.Unlock()
	if !has {
		s.fail(w, http.StatusNotFound, "no such book")
		return
	}
	s.writeJSON(w, http.StatusOK, book)
}

func (s *BookServer) insert(book Book) Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	book.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.books[book.ID] = book
	return book
}

func (s *BookServer) createBook(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Token") == "" {
		s.fail(w, http.StatusForbidden, "X-Token is required")
		return
	}
	var book Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		s.fail(w, http.StatusBadRequest, "bad book: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, s.insert(book))
}

func (s *BookServer) createBookForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, http.StatusBadRequest, "bad form: "+err.Error())
		return
	}
	book := Book{
		Title:  r.PostForm.Get("title"),
		Author: r.PostForm.Get("author"),
	}
	if year := r.PostForm.Get("year"); year != "" {
		var err error
		if book.Year, err = strconv.Atoi(year); err != nil {
			s.fail(w, http.StatusBadRequest, "bad year")
			return
		}
	}
	s.writeJSON(w, http.StatusCreated, s.insert(book))
}

func (s *BookServer) updateBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var book Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		s.fail(w, http.StatusBadRequest, "bad book: "+err.Error())
		return
	}
	book.ID = id

	s.mu.Lock()
	_, has := s.books[id]
	if has {
		s.books[id] = book
	}
	s.mu.Unlock()

	if !has {
		s.fail(w, http.StatusNotFound, "no such book")
		return
	}
	s.writeJSON(w, http.StatusOK, book)
}

func (s *BookServer) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	_, has := s.books[id]
	delete(s.books, id)
	delete(s.covers, id)
	s.mu.Unlock()
	if !has {
		s.fail(w, http.StatusNotFound, "no such book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *BookServer) uploadCover(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	file, header, err := r.FormFile("cover")
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad cover: "+err.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad cover: "+err.Error())
		return
	}
	info := CoverInfo{
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Size:      len(data),
	}

	s.mu.Lock()
	_, has := s.books[id]
	if has {
		s.covers[id] = info
	}
	s.mu.Unlock()

	if !has {
		s.fail(w, http.StatusNotFound, "no such book")
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// since returns the time passed since the given timestamp.
func (s *BookServer) since(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	ts := &timestamppb.Timestamp{}
	if err := protojson.Unmarshal(body, ts); err != nil {
		s.fail(w, http.StatusBadRequest, "bad timestamp: "+err.Error())
		return
	}
	out, err := protojson.Marshal(durationpb.New(s.now().Sub(ts.AsTime())))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// SetClock replaces the clock used by /since.
func (s *BookServer) SetClock(now func() time.Time) {
	s.now = now
}
