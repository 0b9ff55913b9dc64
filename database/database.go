package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Open opens (creating if needed) the local data file and brings its schema
// up to date.
func Open(path string) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		err = errors.Wrap(err, "database.open")
		return
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		err = errors.Wrap(err, "database.pragma")
		return
	}

	// one local user, a handful of concurrent flows at most
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		err = errors.Wrap(err, "database.migrate")
		return
	}

	return
}
