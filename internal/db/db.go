package db

import (
	"database/sql"

	"github.com/rs/zerolog"
)

// DB is the local database. It only holds editor autosaves; every record
// the site shows lives in the backend.
type DB interface {
	InitDB() error

	Get() *sql.DB
	Close() error

	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}
