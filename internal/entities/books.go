package entities

import (
	"time"
)

// PlaceholderCover is used when a catalog record carries no cover image.
const PlaceholderCover = "/static/placeholder-cover.svg"

type Book struct {
	ID           uint      `gorm:"primaryKey" json:"id" yaml:"id"`
	Area         string    `gorm:"index;size:100" json:"area" yaml:"area"`
	Title        string    `gorm:"index;size:512" json:"title" yaml:"title"`
	Link         string    `gorm:"size:2048" json:"link" yaml:"link"`
	Image        string    `gorm:"size:2048" json:"image" yaml:"image"`
	About        string    `gorm:"type:text" json:"about" yaml:"about"`
	DownloadLink string    `gorm:"size:2048" json:"download_link" yaml:"download_link"`
	Progress     int       `gorm:"default:0" json:"progress" yaml:"progress"` // 0-100
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`

	// Favorite is computed per requesting user from the favorites relation.
	Favorite bool `gorm:"-" json:"favorite" yaml:"-"`
}

// ApplyDefaults fills the fields a catalog record may omit.
// Text fields already default to "", so only the cover and progress need work.
func (b *Book) ApplyDefaults() {
	if b.Image == "" {
		b.Image = PlaceholderCover
	}
	b.Progress = ClampProgress(b.Progress)
}

// ClampProgress bounds a reading percentage to 0..100.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// SearchText is the text a book is matched on: title, area and synopsis.
func (b Book) SearchText() string {
	return b.Title + " " + b.Area + " " + b.About
}

// Favorite links a user identity to a book. At most one row exists per pair.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;uniqueIndex:idx_favorites_user_book" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_favorites_user_book" json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is an immutable user annotation on a book.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index" json:"-"`
	BookID    uint      `gorm:"index" json:"book_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadingProgress stores how far a user got through a book.
type ReadingProgress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;uniqueIndex:idx_progress_user_book" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_progress_user_book" json:"book_id"`
	Percent   int       `json:"percent"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Favorite) TableName() string {
	return "favorites"
}

func (Note) TableName() string {
	return "notes"
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
