package procstat

import "os"

// FileSystem reads whole procfs records. Readers take one so that records
// can be served from memory in tests.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// ReadFileFunc adapts a function to the FileSystem interface.
type ReadFileFunc func(name string) ([]byte, error)

// ReadFile calls f(name).
func (f ReadFileFunc) ReadFile(name string) ([]byte, error) {
	return f(name)
}

// OSFileSystem reads records from the host.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}
