package book_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/downfa11-org/snapstore/pkg/book"
)

const testTag uint64 = 0xBEEF

func writeBook(t *testing.T, path string, chapters map[string][]byte) {
	t.Helper()
	w, err := book.NewWriter(path, testTag)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for name, data := range chapters {
		cw, err := w.NewChapter(name)
		if err != nil {
			t.Fatalf("NewChapter(%q): %v", name, err)
		}
		if _, err := cw.Write(data); err != nil {
			t.Fatalf("Write(%q): %v", name, err)
		}
		if err := cw.Close(); err != nil {
			t.Fatalf("close chapter %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.book")
	chapters := map[string][]byte{
		"alpha": []byte("first chapter payload"),
		"beta":  bytes.Repeat([]byte{0xAB}, 10000),
		"empty": nil,
	}
	writeBook(t, path, chapters)

	b, err := book.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if b.Tag() != testTag {
		t.Errorf("Tag() = %#x, want %#x", b.Tag(), testTag)
	}
	if got := len(b.Chapters()); got != len(chapters) {
		t.Errorf("Chapters() returned %d names, want %d", got, len(chapters))
	}

	for name, want := range chapters {
		cr, ok := b.Chapter(name)
		if !ok {
			t.Fatalf("chapter %q missing", name)
		}
		if cr.Size() != int64(len(want)) {
			t.Errorf("chapter %q size = %d, want %d", name, cr.Size(), len(want))
		}
		got, err := io.ReadAll(cr)
		if err != nil {
			t.Fatalf("read chapter %q: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("chapter %q content mismatch", name)
		}
	}

	if _, ok := b.Chapter("missing"); ok {
		t.Error("Chapter(missing) = ok, want absent")
	}
}

func TestReadAtBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.book")
	writeBook(t, path, map[string][]byte{
		"a": []byte("0123456789"),
		"b": []byte("abcdefghij"),
	})

	b, err := book.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	cr, _ := b.Chapter("a")
	buf := make([]byte, 4)
	if n, err := cr.ReadAt(buf, 3); err != nil || string(buf[:n]) != "3456" {
		t.Errorf("ReadAt(3) = %q, %v", buf[:n], err)
	}

	// A read reaching past the chapter end must not leak into chapter b.
	n, err := cr.ReadAt(buf, 8)
	if err != io.EOF {
		t.Errorf("ReadAt past end: err = %v, want io.EOF", err)
	}
	if n != 2 || string(buf[:n]) != "89" {
		t.Errorf("ReadAt past end = %q (%d bytes)", buf[:n], n)
	}

	if _, err := cr.ReadAt(buf, 10); err != io.EOF {
		t.Errorf("ReadAt at end: err = %v, want io.EOF", err)
	}
}

func TestDuplicateChapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.book")
	w, err := book.NewWriter(path, testTag)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	cw, err := w.NewChapter("x")
	if err != nil {
		t.Fatalf("NewChapter: %v", err)
	}

	if _, err := w.NewChapter("y"); !errors.Is(err, book.ErrChapterOpen) {
		t.Errorf("second open chapter: err = %v, want ErrChapterOpen", err)
	}

	if err := cw.Close(); err != nil {
		t.Fatalf("close chapter: %v", err)
	}
	if _, err := w.NewChapter("x"); !errors.Is(err, book.ErrChapterExists) {
		t.Errorf("duplicate name: err = %v, want ErrChapterExists", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, 256), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := book.Open(path); !errors.Is(err, book.ErrBadMagic) {
		t.Errorf("Open(junk): err = %v, want ErrBadMagic", err)
	}
}

func TestOpenTooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.bin")
	if err := os.WriteFile(path, []byte("tiny"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := book.Open(path); !errors.Is(err, book.ErrBadFormat) {
		t.Errorf("Open(tiny): err = %v, want ErrBadFormat", err)
	}
}

func TestCorruptedTOC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.book")
	writeBook(t, path, map[string][]byte{"a": []byte("payload")})

	// Flip a byte in the table of contents. The footer sits at the very
	// end; the TOC is directly before it.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-40] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := book.Open(path); !errors.Is(err, book.ErrBadFormat) {
		t.Errorf("Open(corrupt toc): err = %v, want ErrBadFormat", err)
	}
}

func TestWriterRefusesReuse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reuse.book")
	w, err := book.NewWriter(path, testTag)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, book.ErrClosed) {
		t.Errorf("double Close: err = %v, want ErrClosed", err)
	}
	if _, err := w.NewChapter("late"); !errors.Is(err, book.ErrClosed) {
		t.Errorf("NewChapter after Close: err = %v, want ErrClosed", err)
	}
}
