package util

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/edsrzf/mmap-go"
)

// ErrFileChanged means the file shrank while it was being read.
var ErrFileChanged = errors.New("file changed while reading")

// WithMappedFile maps path read-only, copies the contents out of the mapping
// and passes the copy to fn. The mapping and file descriptor are released
// before fn runs, so fn owns the slice and may keep it.
//
// A file truncated in place while it is being copied fails with
// ErrFileChanged instead of faulting the process.
// Empty files cannot be mapped and are passed as an empty slice.
func WithMappedFile(path string, fn func(data []byte) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fn([]byte{})
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Some filesystems refuse mmap; a plain read keeps the scoped contract.
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
		return fn(data)
	}
	data, copyErr := copyMapped(m)
	if unmapErr := m.Unmap(); unmapErr != nil && copyErr == nil {
		return fmt.Errorf("unmap %s: %w", path, unmapErr)
	}
	if copyErr != nil {
		return fmt.Errorf("read %s: %w", path, copyErr)
	}

	return fn(data)
}

// copyMapped copies m into a fresh slice. Touching pages past the end of a
// file that was truncated after mapping raises a memory fault, which is
// recovered and reported as ErrFileChanged.
func copyMapped(m mmap.MMap) (data []byte, err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(interface{ Addr() uintptr }); !ok {
				panic(r)
			}
			data, err = nil, ErrFileChanged
		}
	}()

	data = make([]byte, len(m))
	copy(data, m)
	return data, nil
}
