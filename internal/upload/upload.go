// Package upload implements the attachment handler for consultation intake.
// It enforces size and type constraints on a single uploaded file, stores the
// file under a collision-free generated name, and returns a reference that
// flows downstream instead of the raw bytes.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Rejection errors. Both are client-correctable (4xx at the HTTP layer).
var (
	// ErrTooLarge is returned when the uploaded file exceeds the size cap.
	ErrTooLarge = errors.New("attachment exceeds the maximum allowed size")

	// ErrUnsupportedType is returned for files outside the allowed type set.
	ErrUnsupportedType = errors.New("attachment type is not allowed")
)

// allowedExts is the fixed extension allow-list: images, documents, and
// spreadsheets.
var allowedExts = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".txt": {},
}

// Attachment references one accepted upload. StoredName is unique across all
// attachments ever received; StoragePath is what the consultation record and
// notification emails carry.
type Attachment struct {
	OriginalName string
	StoredName   string
	SizeBytes    int64
	MIMEType     string
	StoragePath  string
}

// Handler validates and stores uploaded files on the local filesystem.
type Handler struct {
	dir      string
	maxBytes int64
}

// New creates the upload directory if needed and returns a Handler enforcing
// the given size cap.
func New(dir string, maxBytes int64) (*Handler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Handler{dir: dir, maxBytes: maxBytes}, nil
}

// Accept validates fh and persists it under a generated unique name. A nil fh
// means the submission carried no attachment and yields (nil, nil). The file
// is fully written before the reference is returned; on a rejected or failed
// upload nothing is left behind on disk.
func (h *Handler) Accept(fh *multipart.FileHeader) (*Attachment, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > h.maxBytes {
		return nil, ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExts[ext]; !ok {
		return nil, ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	stored := storedName(ext)
	path := filepath.Join(h.dir, stored)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create stored file: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, h.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > h.maxBytes {
		// Header size can lie; the byte count is authoritative.
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	att := &Attachment{
		OriginalName: fh.Filename,
		StoredName:   stored,
		SizeBytes:    n,
		MIMEType:     fh.Header.Get("Content-Type"),
		StoragePath:  path,
	}
	log.Debug().
		Str("stored_name", stored).
		Int64("size_bytes", n).
		Msg("attachment stored")
	return att, nil
}

// storedName builds a unique file name: millisecond timestamp plus a random
// suffix plus the original extension. The UUID suffix makes collisions
// impossible even for same-millisecond uploads of the same file.
func storedName(ext string) string {
	return fmt.Sprintf("attachment-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
