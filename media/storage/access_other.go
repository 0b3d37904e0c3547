//go:build !unix

package storage

import "os"

// checkWritable probes the directory with a temporary file where access(2)
// is not available.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".resizer-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
