// snaptool inspects and maintains snapshot files.
//
//	snaptool [flags] info <file>
//	snaptool [flags] pages <file>
//	snaptool [flags] create [lsn]
//	snaptool [flags] squash <out-dir> <file>...
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/downfa11-org/snapstore/pkg/config"
	"github.com/downfa11-org/snapstore/pkg/lsn"
	"github.com/downfa11-org/snapstore/pkg/metrics"
	"github.com/downfa11-org/snapstore/pkg/snapfile"
	"github.com/fatih/color"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: snaptool [flags] <info|pages|create|squash> ...\n")
	os.Exit(2)
}

func main() {
	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if len(args) == 0 {
		usage()
	}
	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "info":
		err = runInfo(args)
	case "pages":
		err = runPages(args)
	case "create":
		err = runCreate(cfg, args)
	case "squash":
		err = runSquash(args)
	default:
		usage()
	}
	if err != nil {
		color.Red("snaptool %s: %v", cmd, err)
		os.Exit(1)
	}
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file")
	}
	sf, err := snapfile.OpenSnapFile(args[0])
	if err != nil {
		return err
	}
	defer sf.Close()

	meta, err := sf.ReadMeta()
	if err != nil {
		return err
	}

	color.Green("%s", args[0])
	fmt.Printf("  timeline:    %s\n", meta.Timeline)
	fmt.Printf("  lsn:         %s\n", meta.Lsn)
	if meta.Predecessor != nil {
		fmt.Printf("  predecessor: %s @ %s\n", meta.Predecessor.Timeline, meta.Predecessor.Lsn)
	} else {
		fmt.Printf("  predecessor: none (base snapshot)\n")
	}
	fmt.Printf("  pages:       %d (%d bytes of page data)\n",
		sf.PageCount(), sf.PageCount()*snapfile.PageSize)
	return nil
}

func runPages(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file")
	}
	sf, err := snapfile.OpenSnapFile(args[0])
	if err != nil {
		return err
	}
	defer sf.Close()

	it := sf.AllPages()
	for it.Next() {
		page, err := it.Page()
		if err != nil {
			color.Red("  page %8d  UNREADABLE: %v", it.PageNum(), err)
			continue
		}
		fmt.Printf("  page %8d  % x ...\n", it.PageNum(), page[:16])
	}
	return nil
}

func runCreate(cfg *config.Config, args []string) error {
	var l lsn.Lsn
	switch len(args) {
	case 0:
	case 1:
		var err error
		if l, err = lsn.Parse(args[0]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expected at most one lsn")
	}

	if err := os.MkdirAll(cfg.SnapDir, 0o755); err != nil {
		return fmt.Errorf("create snap dir: %w", err)
	}

	meta := snapfile.NewSnapMeta(nil, snapfile.NewTimeline(), l)
	w, err := snapfile.NewSnapWriter(cfg.SnapDir, meta)
	if err != nil {
		return err
	}
	meta, err = w.Finish()
	if err != nil {
		return err
	}
	color.Green("created %s", filepath.Join(cfg.SnapDir, meta.Filename()))
	return nil
}

func runSquash(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected an output directory and at least one file")
	}
	outDir, files := args[0], args[1:]
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	chain := make([]*snapfile.SnapFile, 0, len(files))
	defer func() {
		for _, sf := range chain {
			sf.Close()
		}
	}()
	for _, path := range files {
		sf, err := snapfile.OpenSnapFile(path)
		if err != nil {
			return err
		}
		chain = append(chain, sf)
	}

	meta, err := snapfile.Squash(outDir, chain)
	if err != nil {
		return err
	}
	color.Green("squashed %d snapshots into %s", len(chain), filepath.Join(outDir, meta.Filename()))
	return nil
}
