package database

import (
	"database/sql"
	"errors"
)

var (
	ErrConflict = errors.New("post already stored")
	ErrStore    = errors.New("post store failure")
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// PostRecord is a row of the posts table. The column names predate this
// service and are kept so existing databases open unchanged.
type PostRecord struct {
	Date    string         `db:"DATE"`
	Time    string         `db:"TIME"`
	PostID  string         `db:"POST_ID"`
	Content string         `db:"CONTENT"`
	Media   string         `db:"MEDIA"`
	Bird    string         `db:"BIRD"`
	QuoteID sql.NullString `db:"QUOTE_ID"`
}
