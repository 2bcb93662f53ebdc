//go:build linux
// +build linux

package book

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential hints the kernel that the file will be written or read
// front to back.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}

// syncFile pushes file data to stable storage. Fdatasync is enough here:
// the book format does not rely on file metadata beyond its size, which
// fdatasync covers.
func syncFile(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
