package domain

import (
	"os"
	"path/filepath"
)

const (
	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "berth.yml"

	// UserConfigEnv names the environment variable that overrides the user defaults path.
	UserConfigEnv = "BERTH_CONFIG"

	// UserConfigDirName is the directory under the user config dir holding defaults.
	UserConfigDirName = "berth"

	// UserConfigFileName is the name of the user defaults file.
	UserConfigFileName = "config.yml"

	// DefaultShell is the shell used to run commands.
	DefaultShell = "sh"

	// DefaultComposeBinary is the docker-compose executable.
	DefaultComposeBinary = "docker-compose"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultUserConfigPath returns the path of the user defaults file.
// BERTH_CONFIG wins over the platform config directory.
func DefaultUserConfigPath() string {
	if p := os.Getenv(UserConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, UserConfigDirName, UserConfigFileName)
}
