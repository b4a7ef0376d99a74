package db

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kvisli/glyptodon/domain"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

const (
	//Accounts
	sqlCreateAccountsTable = `CREATE TABLE IF NOT EXISTS accounts(
                        id uuid NOT NULL PRIMARY KEY,
                        username varchar(100) UNIQUE NOT NULL,
                        password_hash varchar(255) NOT NULL,
                        created_at timestamp default current_timestamp
                        )`
	sqlInsertAccount           = `INSERT INTO accounts(id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	sqlSelectAccountByUsername = `SELECT id, username, password_hash, created_at FROM accounts WHERE username = ?`
	sqlSelectAccountById       = `SELECT id, username, password_hash, created_at FROM accounts WHERE id = ?`

	//Posts
	sqlCreatePostsTable = `CREATE TABLE IF NOT EXISTS posts(
                        id uuid NOT NULL PRIMARY KEY,
                        user_id uuid NOT NULL,
                        title varchar(200) NOT NULL,
                        body text NOT NULL,
                        created_at timestamp default current_timestamp,
                        updated_at timestamp default current_timestamp
                        )`
	sqlInsertPost     = `INSERT INTO posts(id, user_id, title, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	sqlSelectPostById = `SELECT posts.id, posts.title, posts.body, accounts.username, posts.created_at, posts.updated_at FROM posts
    														INNER JOIN accounts ON accounts.id = posts.user_id
                                                            WHERE posts.id = ?`
	sqlSelectAllPosts = `SELECT posts.id, posts.title, posts.body, accounts.username, posts.created_at, posts.updated_at FROM posts
    														INNER JOIN accounts ON accounts.id = posts.user_id
                                                            ORDER BY posts.created_at DESC`
	sqlSearchPosts = `SELECT posts.id, posts.title, posts.body, accounts.username, posts.created_at, posts.updated_at FROM posts
    														INNER JOIN accounts ON accounts.id = posts.user_id
                                                            WHERE posts.title LIKE ? OR posts.body LIKE ?
                                                            ORDER BY posts.created_at DESC`
	sqlSelectPostOwner = `SELECT user_id FROM posts WHERE id = ?`
	sqlUpdatePost      = `UPDATE posts SET title = ?, body = ?, updated_at = ? WHERE id = ?`
	sqlDeletePost      = `DELETE FROM posts WHERE id = ?`
)

// Open opens the database file at the given path, configures the
// connection pool and creates the schema if it does not exist yet.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	var journalMode string
	if err := sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		log.Printf("Warning: Failed to enable WAL mode: %v", err)
	}

	sqlDB.Exec("PRAGMA synchronous = NORMAL")
	sqlDB.Exec("PRAGMA busy_timeout = 5000")
	sqlDB.Exec("PRAGMA foreign_keys = ON")

	db := &DB{db: sqlDB}
	if err := db.CreateDB(); err != nil {
		return nil, err
	}
	return db, nil
}

// CreateDB creates the database schema.
func (db *DB) CreateDB() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(sqlCreateAccountsTable); err != nil {
			return err
		}
		if _, err := tx.Exec(sqlCreatePostsTable); err != nil {
			return err
		}
		return nil
	})
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) CreateAccount(username string, passwordHash string) (error, *domain.Account) {
	acc := domain.Account{
		Id:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertAccount, acc.Id, acc.Username, acc.PasswordHash, acc.CreatedAt)
		return err
	})
	if err != nil {
		return err, nil
	}
	return nil, &acc
}

func (db *DB) ReadAccByUsername(username string) (error, *domain.Account) {
	row := db.db.QueryRow(sqlSelectAccountByUsername, username)
	var tempAcc domain.Account
	err := row.Scan(&tempAcc.Id, &tempAcc.Username, &tempAcc.PasswordHash, &tempAcc.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	return err, &tempAcc
}

func (db *DB) ReadAccById(id uuid.UUID) (error, *domain.Account) {
	row := db.db.QueryRow(sqlSelectAccountById, id)
	var tempAcc domain.Account
	err := row.Scan(&tempAcc.Id, &tempAcc.Username, &tempAcc.PasswordHash, &tempAcc.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	return err, &tempAcc
}

func (db *DB) CreatePost(userId uuid.UUID, title string, body string) (error, *domain.Post) {
	id := uuid.New()
	now := time.Now()
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertPost, id, userId, title, body, now, now)
		return err
	})
	if err != nil {
		return err, nil
	}
	return db.ReadPostById(id)
}

func (db *DB) ReadPostById(id uuid.UUID) (error, *domain.Post) {
	row := db.db.QueryRow(sqlSelectPostById, id)
	var post domain.Post
	err := row.Scan(&post.Id, &post.Title, &post.Body, &post.Author, &post.CreatedAt, &post.UpdatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	return err, &post
}

func (db *DB) ReadAllPosts() (error, *[]domain.Post) {
	return db.readPosts(sqlSelectAllPosts)
}

func (db *DB) SearchPosts(term string) (error, *[]domain.Post) {
	pattern := "%" + term + "%"
	return db.readPosts(sqlSearchPosts, pattern, pattern)
}

func (db *DB) readPosts(query string, args ...any) (error, *[]domain.Post) {
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var posts []domain.Post

	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.Id, &post.Title, &post.Body, &post.Author, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return err, &posts
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		return err, &posts
	}

	return nil, &posts
}

// ReadPostOwner returns the account id of the post's author.
func (db *DB) ReadPostOwner(id uuid.UUID) (error, *uuid.UUID) {
	row := db.db.QueryRow(sqlSelectPostOwner, id)
	var owner uuid.UUID
	err := row.Scan(&owner)
	if err == sql.ErrNoRows {
		return err, nil
	}
	return err, &owner
}

func (db *DB) UpdatePost(id uuid.UUID, title string, body string) (error, *domain.Post) {
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdatePost, title, body, time.Now(), id)
		return err
	})
	if err != nil {
		return err, nil
	}
	return db.ReadPostById(id)
}

func (db *DB) DeletePost(id uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeletePost, id)
		return err
	})
}

// wrapTransaction runs the given function within a transaction.
func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error starting transaction: %s", err)
		return err
	}
	for {
		err = f(tx)
		if err != nil {
			serr, ok := err.(*sqlite.Error)
			if ok && serr.Code() == sqlitelib.SQLITE_BUSY {
				continue
			}
			log.Printf("error in transaction: %s", err)
			return err
		}
		err = tx.Commit()
		if err != nil {
			log.Printf("error committing transaction: %s", err)
			return err
		}
		break
	}
	return nil
}
