package entity

import (
	"time"

	"github.com/google/uuid"
)

// Book is the local record of an externally sourced book. It is created the first time
// any user favorites the book and is never removed when the last favorite goes away.
type Book struct {
	ID        string // Provider volume id, used as primary key.
	Title     string
	Thumbnail string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookSummary is the metadata returned by the book provider.
type BookSummary struct {
	ID            string
	Title         string
	Authors       []string
	Publisher     string
	PublishedDate string
	Description   string
	ISBN10        string
	ISBN13        string
	PageCount     int
	Categories    []string
	Thumbnail     string // Best available cover: full thumbnail when present, small one otherwise.
}

// ToBook projects the summary onto the locally persisted columns.
func (s *BookSummary) ToBook() *Book {
	return &Book{
		ID:        s.ID,
		Title:     s.Title,
		Thumbnail: s.Thumbnail,
	}
}

// SearchField selects which provider field a search query is matched against.
type SearchField string

const (
	SearchAny      SearchField = ""
	SearchTitle    SearchField = "title"
	SearchAuthor   SearchField = "author"
	SearchCategory SearchField = "category"
	SearchISBN     SearchField = "isbn"
)

// IsValid checks if the SearchField is a known value.
func (f SearchField) IsValid() bool {
	switch f {
	case SearchAny, SearchTitle, SearchAuthor, SearchCategory, SearchISBN:
		return true
	default:
		return false
	}
}

// FavoriteEdge links one user to one book. The pair (UserID, BookID) is unique.
type FavoriteEdge struct {
	UserID    uuid.UUID
	BookID    string
	CreatedAt time.Time
}
