package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHome returns the current user's home directory.
func UserHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(UserHome(), p[2:])
	}
	return p
}
