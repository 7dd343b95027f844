package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var pdfMagic = []byte("%PDF")

// DocumentStore persists uploaded enrollment documents on disk.
// Files are grouped per document type and prefixed with a UUID so
// repeated uploads never collide.
type DocumentStore struct {
	baseDir     string
	maxFileSize int64
}

// NewDocumentStore ensures the base directory exists and returns a handle.
func NewDocumentStore(baseDir string, maxFileSize int64) (*DocumentStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &DocumentStore{baseDir: baseDir, maxFileSize: maxFileSize}, nil
}

// MaxFileSize returns the per-file upload ceiling in bytes.
func (s *DocumentStore) MaxFileSize() int64 {
	return s.maxFileSize
}

// SaveUpload validates and writes an uploaded document, returning the
// stored path relative to the base directory. Only PDF files within the
// size limit are accepted.
func (s *DocumentStore) SaveUpload(docType, originalName string, r io.Reader, size int64) (string, error) {
	if size > s.maxFileSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxFileSize)
	}
	if !strings.EqualFold(filepath.Ext(originalName), ".pdf") {
		return "", fmt.Errorf("only PDF files are accepted")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxFileSize)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", fmt.Errorf("file is not a valid PDF")
	}

	relPath := filepath.Join(sanitizeFolder(docType), uuid.NewString()+"_"+filepath.Base(originalName))
	fullPath := filepath.Join(s.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return relPath, nil
}

// Open returns a read-only handle for a stored document.
func (s *DocumentStore) Open(relPath string) (*os.File, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return file, nil
}

// Delete removes a stored document if present.
func (s *DocumentStore) Delete(relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *DocumentStore) Path(relPath string) (string, error) {
	return s.resolve(relPath)
}

func (s *DocumentStore) resolve(relPath string) (string, error) {
	full := filepath.Join(s.baseDir, relPath)
	// Keep every resolved path inside the base directory.
	if rel, err := filepath.Rel(s.baseDir, full); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid document path")
	}
	return full, nil
}

func sanitizeFolder(docType string) string {
	folder := strings.ToLower(strings.TrimSpace(docType))
	folder = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, folder)
	if folder == "" {
		folder = "misc"
	}
	return folder
}
