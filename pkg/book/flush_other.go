//go:build !linux
// +build !linux

package book

import "os"

func adviseSequential(f *os.File) {}

func syncFile(f *os.File) error {
	return f.Sync()
}
