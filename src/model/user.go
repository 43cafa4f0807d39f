package model

import (
	"database/sql"
	"fmt"
)

// User is a dashboard account. Passwords are stored as bcrypt hashes.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Email    string `json:"email"`
}

func CreateUser(db *sql.DB, username, hashedPassword, email string) (*User, error) {
	res, err := db.Exec(`INSERT INTO users (username, password, email) VALUES (?, ?, ?)`,
		username, hashedPassword, email)
	if err != nil {
		return nil, fmt.Errorf("error creating user %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading new user id: %w", err)
	}
	return &User{ID: id, Username: username, Password: hashedPassword, Email: email}, nil
}

func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	var u User
	err := db.QueryRow(`SELECT id, username, password, email FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Password, &u.Email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	var u User
	err := db.QueryRow(`SELECT id, username, password, email FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Password, &u.Email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
