package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fileHeader builds a real *multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("attachment", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["attachment"][0]
}

func newHandler(t *testing.T, maxBytes int64) *Handler {
	t.Helper()
	h, err := New(t.TempDir(), maxBytes)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestAccept_NilFileIsNoAttachment(t *testing.T) {
	h := newHandler(t, 1024)
	att, err := h.Accept(nil)
	if err != nil || att != nil {
		t.Fatalf("Accept(nil) = %v, %v; want nil, nil", att, err)
	}
}

func TestAccept_StoresFileAndReturnsReference(t *testing.T) {
	h := newHandler(t, 1024)
	fh := fileHeader(t, "thesis-draft.pdf", []byte("%PDF-1.4 data"))

	att, err := h.Accept(fh)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if att.OriginalName != "thesis-draft.pdf" {
		t.Errorf("OriginalName = %q", att.OriginalName)
	}
	if !strings.HasSuffix(att.StoredName, ".pdf") || !strings.HasPrefix(att.StoredName, "attachment-") {
		t.Errorf("StoredName = %q", att.StoredName)
	}
	if att.SizeBytes != int64(len("%PDF-1.4 data")) {
		t.Errorf("SizeBytes = %d", att.SizeBytes)
	}
	data, err := os.ReadFile(att.StoragePath)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "%PDF-1.4 data" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestAccept_RejectsUnsupportedType(t *testing.T) {
	h := newHandler(t, 1024)
	for _, name := range []string{"run.exe", "script.sh", "archive.zip", "noext"} {
		fh := fileHeader(t, name, []byte("x"))
		if _, err := h.Accept(fh); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Accept(%q) = %v, want ErrUnsupportedType", name, err)
		}
	}
	// Nothing persisted for rejected files.
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected uploads left %d files behind", len(entries))
	}
}

func TestAccept_RejectsOversize(t *testing.T) {
	h := newHandler(t, 16)
	fh := fileHeader(t, "big.txt", bytes.Repeat([]byte("a"), 17))
	if _, err := h.Accept(fh); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Accept oversize = %v, want ErrTooLarge", err)
	}
	entries, _ := os.ReadDir(h.dir)
	if len(entries) != 0 {
		t.Fatalf("oversize upload left %d files behind", len(entries))
	}
}

func TestAccept_ExtensionCheckIsCaseInsensitive(t *testing.T) {
	h := newHandler(t, 1024)
	fh := fileHeader(t, "PHOTO.JPG", []byte("jpeg-bytes"))
	att, err := h.Accept(fh)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !strings.HasSuffix(att.StoredName, ".jpg") {
		t.Errorf("StoredName = %q, want lowercase .jpg suffix", att.StoredName)
	}
}

func TestStoredName_CollisionFree(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		n := storedName(".pdf")
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate stored name after %d iterations: %s", i, n)
		}
		seen[n] = struct{}{}
	}
}

func TestAccept_SameOriginalNameYieldsDistinctFiles(t *testing.T) {
	h := newHandler(t, 1024)
	names := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		fh := fileHeader(t, "data.xlsx", []byte("cells"))
		att, err := h.Accept(fh)
		if err != nil {
			t.Fatalf("Accept %d: %v", i, err)
		}
		if _, dup := names[att.StoredName]; dup {
			t.Fatalf("stored name collision: %s", att.StoredName)
		}
		names[att.StoredName] = struct{}{}
	}
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 50 {
		t.Fatalf("expected 50 stored files, found %d", len(entries))
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".xlsx" {
			t.Errorf("stored file %q lost its extension", e.Name())
		}
	}
}
