package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ModelExt is the only file extension the sandbox accepts.
const ModelExt = ".glb"

// ============================================================
// Model Sandbox
// ============================================================

// Upload is a model file held in memory for one session. It is never
// written to disk.
type Upload struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Format   string    `json:"format"`
	Uploaded time.Time `json:"uploaded"`
	data     []byte
}

// Data returns the uploaded bytes.
func (u *Upload) Data() []byte {
	return u.data
}

// ValidateModelFile accepts only names ending in .glb, in any case.
func ValidateModelFile(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ModelExt {
		return fmt.Errorf("%w: %q", ErrInvalidModelFile, name)
	}
	return nil
}

func newUpload(name string, data []byte, maxBytes int64, now time.Time) (*Upload, error) {
	if err := ValidateModelFile(name); err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, len(data), maxBytes)
	}
	return &Upload{
		Name:     filepath.Base(name),
		Size:     int64(len(data)),
		Format:   strings.ToUpper(strings.TrimPrefix(ModelExt, ".")),
		Uploaded: now,
		data:     data,
	}, nil
}

// FormatSize renders a byte count the way the sandbox info panel shows it.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	mb := float64(n) / (unit * unit)
	if mb < 1 {
		return fmt.Sprintf("%.2f KB", float64(n)/unit)
	}
	return fmt.Sprintf("%.2f MB", mb)
}
