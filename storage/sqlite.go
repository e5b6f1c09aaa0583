package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"intlist/types"
)

const sqliteSchema = `
create table if not exists lists (
	name text not null primary key,
	size integer not null
);
create table if not exists list_values (
	name text not null,
	position integer not null,
	value integer not null,
	primary key (name, position)
);
`

// SQLiteStore keeps lists in a SQLite database, one row per value.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string, list *types.IntegerList) (int, error) {
	if err := checkName("load", name); err != nil {
		return 0, err
	}

	var size int
	err := s.db.QueryRowContext(ctx, "select size from lists where name = ?", name).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &types.FileError{Op: "load", Path: name, Err: os.ErrNotExist}
	}
	if err != nil {
		return 0, &types.FileError{Op: "load", Path: name, Err: err}
	}

	rows, err := s.db.QueryContext(ctx, "select value from list_values where name = ? order by position", name)
	if err != nil {
		return 0, &types.FileError{Op: "load", Path: name, Err: err}
	}
	defer rows.Close()

	values := make([]int, 0, size)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return 0, &types.FileError{Op: "load", Path: name, Err: err}
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return 0, &types.FileError{Op: "load", Path: name, Err: err}
	}

	list.Append(values...)
	return len(values), nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, list *types.IntegerList) error {
	if err := checkName("save", name); err != nil {
		return err
	}
	if err := s.save(ctx, name, list); err != nil {
		return &types.FileError{Op: "save", Path: name, Err: err}
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, name string, list *types.IntegerList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "insert or replace into lists (name, size) values (?, ?)", name, list.Len()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "delete from list_values where name = ?", name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "insert into list_values (name, position, value) values (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	position := 0
	list.Each(func(v int) bool {
		_, err = stmt.ExecContext(ctx, name, position, v)
		position++
		return err == nil
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
