package repository

import "database/sql"

type Repo struct {
	db *sql.DB
}

type ThumbEntry struct {
	VideoID    string
	Bytes      int64
	AccessedAt int64
	CreatedAt  int64
}
