package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorage persists uploaded media and reads it back.
type FileStorage interface {
	Store(ownerID, originalName string, data []byte) (string, error)
	// Read returns the stored bytes, or an empty slice when path is blank or unreadable.
	Read(path string) []byte
	// Remove deletes a stored file; used when the message row could not be written.
	Remove(path string) error
}

type FileService struct {
	root string
	now  func() time.Time
}

func NewFileService(root string) *FileService {
	return &FileService{root: filepath.Clean(root), now: time.Now}
}

// Store writes data to <root>/users/<owner>/<millis>-<rand><ext> and returns that path.
func (s *FileService) Store(ownerID, originalName string, data []byte) (string, error) {
	owner := filepath.Base(strings.TrimSpace(ownerID))
	if owner == "" || owner == "." || owner == ".." || owner == string(filepath.Separator) {
		return "", fmt.Errorf("invalid owner id %q", ownerID)
	}
	dir := filepath.Join(s.root, "users", owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], fileExtension(originalName))
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	log.Printf("[files] stored %d bytes at %s", len(data), target)
	return target, nil
}

func (s *FileService) Read(path string) []byte {
	if strings.TrimSpace(path) == "" {
		return []byte{}
	}
	clean, ok := s.within(path)
	if !ok {
		log.Printf("[files] refusing to read %s outside %s", path, s.root)
		return []byte{}
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		log.Printf("[files] read %s failed: %v", path, err)
		return []byte{}
	}
	return data
}

func (s *FileService) Remove(path string) error {
	clean, ok := s.within(path)
	if !ok {
		return fmt.Errorf("refusing to remove %s outside %s", path, s.root)
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", clean, err)
	}
	return nil
}

func (s *FileService) within(path string) (string, bool) {
	clean := filepath.Clean(path)
	rel, err := filepath.Rel(s.root, clean)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return clean, true
}

func fileExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if ext == "." || len(ext) > 10 {
		return ""
	}
	return ext
}
