package snapfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/downfa11-org/snapstore/pkg/book"
	"github.com/downfa11-org/snapstore/pkg/codec"
	"github.com/downfa11-org/snapstore/pkg/lsn"
)

// buildSnap writes a snapshot book by hand so tests can produce layouts
// the writer would never emit.
func buildSnap(t *testing.T, path string, meta *SnapMeta, pages []byte, index map[uint64]uint64) {
	t.Helper()
	bw, err := book.NewWriter(path, snapFileTag)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if meta != nil {
		cw, err := bw.NewChapter(chapterSnapMeta)
		if err != nil {
			t.Fatal(err)
		}
		if err := codec.Encode(cw, metaSchemaVersion, metaToWire(*meta)); err != nil {
			t.Fatal(err)
		}
		if err := cw.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if pages != nil {
		cw, err := bw.NewChapter(chapterPages)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := cw.Write(pages); err != nil {
			t.Fatal(err)
		}
		if err := cw.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if index != nil {
		cw, err := bw.NewChapter(chapterPageIndex)
		if err != nil {
			t.Fatal(err)
		}
		if err := codec.Encode(cw, indexSchemaVersion, indexV1{Pages: index}); err != nil {
			t.Fatal(err)
		}
		if err := cw.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestTruncatedPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.zdb")
	meta := SnapMeta{Lsn: lsn.Lsn(1)}

	// One whole page followed by half a page; the index claims both.
	payload := append(bytes.Repeat([]byte{0xAA}, PageSize), bytes.Repeat([]byte{0xBB}, PageSize/2)...)
	buildSnap(t, path, &meta, payload, map[uint64]uint64{5: 0, 9: 1})

	sf, err := OpenSnapFile(path)
	if err != nil {
		t.Fatalf("OpenSnapFile: %v", err)
	}
	defer sf.Close()

	page, err := sf.ReadPage(5)
	if err != nil {
		t.Fatalf("ReadPage(5): %v", err)
	}
	if page[0] != 0xAA || page[PageSize-1] != 0xAA {
		t.Error("page 5 content mismatch")
	}

	if _, err := sf.ReadPage(9); !errors.Is(err, ErrTruncatedPage) {
		t.Errorf("ReadPage(9): err = %v, want ErrTruncatedPage", err)
	}

	// Unaffected pages must still read after a corrupt one was hit.
	if _, err := sf.ReadPage(5); err != nil {
		t.Errorf("ReadPage(5) after corruption: %v", err)
	}
}

func TestMissingIndexChapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noindex.zdb")
	meta := SnapMeta{Lsn: lsn.Lsn(1)}
	buildSnap(t, path, &meta, nil, nil)

	if _, err := OpenSnapFile(path); !errors.Is(err, ErrMissingChapter) {
		t.Errorf("OpenSnapFile: err = %v, want ErrMissingChapter", err)
	}
}

func TestMissingMetaChapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nometa.zdb")
	buildSnap(t, path, nil, nil, map[uint64]uint64{})

	sf, err := OpenSnapFile(path)
	if err != nil {
		t.Fatalf("OpenSnapFile: %v", err)
	}
	defer sf.Close()

	if _, err := sf.ReadMeta(); !errors.Is(err, ErrMissingChapter) {
		t.Errorf("ReadMeta: err = %v, want ErrMissingChapter", err)
	}
}

func TestIndexSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badschema.zdb")
	bw, err := book.NewWriter(path, snapFileTag)
	if err != nil {
		t.Fatal(err)
	}
	cw, err := bw.NewChapter(chapterPageIndex)
	if err != nil {
		t.Fatal(err)
	}
	if err := codec.Encode(cw, indexSchemaVersion+1, indexV1{}); err != nil {
		t.Fatal(err)
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenSnapFile(path); !errors.Is(err, ErrBadFormat) {
		t.Errorf("OpenSnapFile: err = %v, want ErrBadFormat", err)
	}
}
