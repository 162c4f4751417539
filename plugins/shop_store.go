package plugins

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"chestshop/define"
)

const shopSchema = `
CREATE TABLE IF NOT EXISTS shop_locations (
	world TEXT NOT NULL,
	x     INTEGER NOT NULL,
	y     INTEGER NOT NULL,
	z     INTEGER NOT NULL,
	PRIMARY KEY (world, x, y, z)
)`

// ShopStore keeps the shop location set in a SQLite table.
type ShopStore struct {
	db *sql.DB
}

func OpenShopStore(file string) (*ShopStore, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("ShopStore: open %v (%w)", file, err)
	}
	// a single connection keeps :memory: databases alive between calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(shopSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ShopStore: create schema in %v (%w)", file, err)
	}
	return &ShopStore{db: db}, nil
}

func (s *ShopStore) Load() (define.LocationSet, error) {
	rows, err := s.db.Query(`SELECT world, x, y, z FROM shop_locations`)
	if err != nil {
		return nil, fmt.Errorf("ShopStore: load (%w)", err)
	}
	defer rows.Close()
	set := define.NewLocationSet()
	for rows.Next() {
		var l define.Location
		if err := rows.Scan(&l.World, &l.X, &l.Y, &l.Z); err != nil {
			return nil, fmt.Errorf("ShopStore: scan (%w)", err)
		}
		set.Add(l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ShopStore: load (%w)", err)
	}
	return set, nil
}

// Save replaces the stored set with set in one transaction.
func (s *ShopStore) Save(set define.LocationSet) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ShopStore: begin (%w)", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.Exec(`DELETE FROM shop_locations`); err != nil {
		return fmt.Errorf("ShopStore: clear (%w)", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO shop_locations (world, x, y, z) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ShopStore: prepare (%w)", err)
	}
	defer stmt.Close()
	for _, l := range set.Slice() {
		if _, err = stmt.Exec(l.World, l.X, l.Y, l.Z); err != nil {
			return fmt.Errorf("ShopStore: insert %v (%w)", l, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ShopStore: commit (%w)", err)
	}
	return nil
}

func (s *ShopStore) Close() error {
	return s.db.Close()
}
