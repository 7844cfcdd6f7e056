package ports

// FileSystem defines the file operations tasks and conditions rely on.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// WriteFile creates missing parent directories, then creates or truncates
	// the file and writes content.
	WriteFile(path string, content []byte) error

	// Exists reports whether path exists. Files and directories both count.
	Exists(path string) (bool, error)

	// Differ reports whether the two files have different contents.
	Differ(left, right string) (bool, error)
}
