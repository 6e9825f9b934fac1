package model

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/logging"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// ErrDocumentNotFound is returned when a document ID has no row.
var ErrDocumentNotFound = errors.New("document not found")

// Store persists ingested documents, their chunks and chunk embeddings.
// It is the source of truth for the document registry; retrieval indexes
// are rebuilt from it on demand. Safe for concurrent use; the underlying
// sql.DB serializes access.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
//
// The database is created if it doesn't exist, and migrations are applied
// automatically.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		text TEXT NOT NULL,
		metadata TEXT,
		chunk_count INTEGER DEFAULT 0,
		ingested_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		page INTEGER DEFAULT 0,
		embedding BLOB,
		PRIMARY KEY (document_id, chunk_index),
		FOREIGN KEY (document_id) REFERENCES documents(id)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_documents_ingested ON documents(ingested_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveDocument stores a document and its chunks in one transaction,
// replacing any previous version under the same id.
func (s *Store) SaveDocument(doc Document, chunks []Chunk) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is safe to call even after commit - it's a no-op
	defer tx.Rollback()

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO documents (id, name, source, text, metadata, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			text = excluded.text,
			metadata = excluded.metadata,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.Name, doc.Source, doc.Text, string(meta), len(chunks), doc.IngestedAt)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("failed to clear old chunks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (document_id, chunk_index, text, page, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.Exec(c.DocumentID, c.Index, c.Text, c.Page, serializeEmbedding(c.Embedding)); err != nil {
			return fmt.Errorf("failed to save chunk %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Debug("Document saved", "id", doc.ID, "chunks", len(chunks))
	return nil
}

// UpdateDocumentMetadata rewrites one document's session metadata,
// leaving its chunks untouched.
func (s *Store) UpdateDocumentMetadata(id string, meta SessionMetadata) error {
	blob, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	res, err := s.db.Exec(`UPDATE documents SET metadata = ? WHERE id = ?`, string(blob), id)
	if err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// GetDocument retrieves one document by id, without its chunks.
func (s *Store) GetDocument(id string) (Document, error) {
	row := s.db.QueryRow(`
		SELECT id, name, source, text, metadata, chunk_count, ingested_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// ListDocuments returns all documents, newest first, text omitted.
func (s *Store) ListDocuments() ([]Document, error) {
	rows, err := s.db.Query(`
		SELECT id, name, source, '', metadata, chunk_count, ingested_at
		FROM documents ORDER BY ingested_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chunks WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return tx.Commit()
}

// GetChunks returns a document's chunks in index order, embeddings included.
func (s *Store) GetChunks(documentID string) ([]Chunk, error) {
	rows, err := s.db.Query(`
		SELECT document_id, chunk_index, text, page, embedding
		FROM chunks WHERE document_id = ? ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.DocumentID, &c.Index, &c.Text, &c.Page, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.Embedding = deserializeEmbedding(blob)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// SaveChunkEmbeddings writes embeddings for already-stored chunks in one
// transaction, keyed by chunk index.
func (s *Store) SaveChunkEmbeddings(documentID string, embeddings map[int][]float32) error {
	if len(embeddings) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE chunks SET embedding = ? WHERE document_id = ? AND chunk_index = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for idx, emb := range embeddings {
		if _, err := stmt.Exec(serializeEmbedding(emb), documentID, idx); err != nil {
			return fmt.Errorf("failed to save embedding for chunk %d: %w", idx, err)
		}
	}

	return tx.Commit()
}

// DocumentCount returns the number of stored documents.
func (s *Store) DocumentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var meta string
	var ingested time.Time
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Source, &doc.Text, &meta, &doc.ChunkCount, &ingested); err != nil {
		if err == sql.ErrNoRows {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.IngestedAt = ingested
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
			logging.Warn("Unreadable document metadata", "id", doc.ID, "error", err)
		}
	}
	return doc, nil
}

// serializeEmbedding converts a float32 slice to bytes for storage.
// Uses little-endian IEEE 754 format (4 bytes per float).
func serializeEmbedding(embedding []float32) []byte {
	if embedding == nil {
		return nil
	}
	blob := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		bits := math.Float32bits(v)
		blob[i*4] = byte(bits)
		blob[i*4+1] = byte(bits >> 8)
		blob[i*4+2] = byte(bits >> 16)
		blob[i*4+3] = byte(bits >> 24)
	}
	return blob
}

// deserializeEmbedding converts bytes back to a float32 slice.
func deserializeEmbedding(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	embedding := make([]float32, len(blob)/4)
	for i := range embedding {
		bits := uint32(blob[i*4]) |
			uint32(blob[i*4+1])<<8 |
			uint32(blob[i*4+2])<<16 |
			uint32(blob[i*4+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}
