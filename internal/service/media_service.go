package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/talentflow/talentflow-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed MIME types for file-upload answers, detected from content.
var allowedMIMETypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/zip":    ".zip",
	"text/plain":         ".txt",
	"image/jpeg":         ".jpg",
	"image/png":          ".png",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// MediaService stores files submitted as file-upload answers.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveUpload saves an uploaded file to local storage with a UUID filename.
// Returns the relative URL path, which the candidate submits as the answer.
func (s *MediaService) SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect file type: %w", err)
	}
	ext, ok := lookupMIME(mtype)
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, mtype.String(), strings.Join(allowedTypes(), ", "))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadBytes+1)); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + filename, nil
}

// lookupMIME walks the detected type and its parents, so e.g. a docx
// detected as a zip subtype still resolves.
func lookupMIME(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		base, _, _ := strings.Cut(m.String(), ";")
		if ext, ok := allowedMIMETypes[base]; ok {
			return ext, true
		}
	}
	return "", false
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
