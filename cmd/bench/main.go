// bench measures snapshot write and read throughput with synthetic pages.
package main

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/downfa11-org/snapstore/pkg/config"
	"github.com/downfa11-org/snapstore/pkg/metrics"
	"github.com/downfa11-org/snapstore/pkg/snapfile"
	"github.com/downfa11-org/snapstore/util"
)

func main() {
	cfg, _, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}
	if err := run(cfg); err != nil {
		util.Fatal("bench failed: %v", err)
	}
}

func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.SnapDir, 0o755); err != nil {
		return err
	}
	dir, err := os.MkdirTemp(cfg.SnapDir, "bench-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	pages := cfg.BenchPages
	meta := snapfile.NewSnapMeta(nil, snapfile.NewTimeline(), 0)

	w, err := snapfile.NewSnapWriter(dir, meta)
	if err != nil {
		return err
	}
	buf := make([]byte, snapfile.PageSize)
	writeStart := time.Now()
	for n := 0; n < pages; n++ {
		util.GeneratePage(buf, cfg.BenchSeed, uint64(n))
		if err := w.WritePage(uint64(n), buf); err != nil {
			return err
		}
	}
	meta, err = w.Finish()
	if err != nil {
		return err
	}
	writeDur := time.Since(writeStart)

	sf, err := snapfile.OpenSnapFile(filepath.Join(dir, meta.Filename()))
	if err != nil {
		return err
	}
	defer sf.Close()

	order := rand.Perm(pages)
	want := make([]byte, snapfile.PageSize)
	readStart := time.Now()
	for _, n := range order {
		page, err := sf.ReadPage(uint64(n))
		if err != nil {
			return err
		}
		util.GeneratePage(want, cfg.BenchSeed, uint64(n))
		if !bytes.Equal(page[:], want) {
			util.Fatal("page %d read back different bytes", n)
		}
	}
	readDur := time.Since(readStart)

	mb := float64(pages) * snapfile.PageSize / (1 << 20)
	util.Info("wrote %d pages (%.1f MiB) in %v (%.1f MiB/s)", pages, mb, writeDur, mb/writeDur.Seconds())
	util.Info("read  %d pages in random order in %v (%.1f MiB/s)", pages, readDur, mb/readDur.Seconds())
	return nil
}
