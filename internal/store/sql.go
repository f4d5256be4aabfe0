// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dforsi/qdmr/memory"
)

// chunkSize is the size of the rows an element is split into.
const chunkSize = 1024

// SQLStorage implements persistence using a SQL database. Each element is
// stored as rows of up to chunkSize bytes in the table `codeplug_chunks`,
// which is created if missing.
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
	img    *memory.Image
}

// NewSQLStorage creates a new SQLStorage.
// The driver (e.g. sqlite3) must be registered by the importing program.
func NewSQLStorage(driver, dsn string) *SQLStorage {
	return &SQLStorage{
		driver: driver,
		dsn:    dsn,
	}
}

// Load connects to the database and reads the stored chunks into img. An
// empty table is initialized from img.
func (s *SQLStorage) Load(img *memory.Image) error {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	s.db = db
	s.img = img

	if err := s.initSchema(); err != nil {
		s.Close()
		return fmt.Errorf("failed to init schema: %w", err)
	}

	count, err := s.loadChunks(img)
	if err != nil {
		s.Close()
		return err
	}
	if count == 0 {
		return s.Save(img)
	}
	slog.Debug("Loaded image from database", "chunks", count)
	return nil
}

func (s *SQLStorage) loadChunks(img *memory.Image) (int, error) {
	rows, err := s.db.Query("SELECT bank, address, data FROM codeplug_chunks")
	if err != nil {
		return 0, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var bank, addr int64
		var data []byte
		if err := rows.Scan(&bank, &addr, &data); err != nil {
			return count, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := img.Write(memory.Bank(bank), uint32(addr), data); err != nil {
			return count, fmt.Errorf("stored chunk does not fit the image: %w", err)
		}
		count++
	}
	return count, rows.Err()
}

func (s *SQLStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS codeplug_chunks (
		bank INTEGER,
		address INTEGER,
		data BLOB,
		PRIMARY KEY (bank, address)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

const upsertChunk = "INSERT INTO codeplug_chunks (bank, address, data) VALUES (?, ?, ?) " +
	"ON CONFLICT(bank, address) DO UPDATE SET data=excluded.data"

// Save writes every chunk of img in one transaction.
func (s *SQLStorage) Save(img *memory.Image) error {
	if s.db == nil {
		return fmt.Errorf("sql storage %s is not loaded", s.dsn)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, b := range img.Banks() {
		for _, e := range img.Elements(b) {
			for off := 0; off < e.Size(); off += chunkSize {
				if err := upsert(tx, b, e, off); err != nil {
					tx.Rollback()
					return err
				}
			}
		}
	}
	return tx.Commit()
}

// OnWrite upserts the chunks touched by the write.
func (s *SQLStorage) OnWrite(bank memory.Bank, addr uint32, n int) {
	if s.db == nil || s.img == nil || n <= 0 {
		return
	}
	e, ok := s.img.Element(bank, addr)
	if !ok {
		return
	}
	first := int(addr-e.Address()) / chunkSize * chunkSize
	last := int(addr-e.Address()) + n - 1
	for off := first; off <= last && off < e.Size(); off += chunkSize {
		if err := upsert(s.db, bank, e, off); err != nil {
			slog.Error("Failed to persist chunk", "bank", bank, "addr", e.Address()+uint32(off), "err", err)
		}
	}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsert(db execer, bank memory.Bank, e *memory.Element, off int) error {
	end := off + chunkSize
	if end > e.Size() {
		end = e.Size()
	}
	_, err := db.Exec(upsertChunk, int64(bank), int64(e.Address())+int64(off), e.Data()[off:end])
	return err
}

// Close closes the database.
func (s *SQLStorage) Close() error {
	s.img = nil
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
