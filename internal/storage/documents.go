package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DocumentStore persists uploaded document files and returns the reference
// recorded against the user.
type DocumentStore interface {
	Store(c *fiber.Ctx, uid, category string, file *multipart.FileHeader) (string, error)
}

type localDocumentStore struct {
	baseDir string
}

// NewLocalDocumentStore stores files under baseDir/<uid>/.
func NewLocalDocumentStore(baseDir string) (DocumentStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localDocumentStore{baseDir: baseDir}, nil
}

func (s *localDocumentStore) Store(c *fiber.Ctx, uid, category string, file *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.baseDir, uid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create user dir: %w", err)
	}

	name := category + filepath.Ext(sanitize(file.Filename))
	path := filepath.Join(dir, name)
	if err := c.SaveFile(file, path); err != nil {
		return "", fmt.Errorf("save %s: %w", category, err)
	}
	return path, nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, "..", "")
}
