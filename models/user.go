package models

// User is a row of the `users` table in SQLite.
// Password is stored and compared in plaintext.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"password"`
}
