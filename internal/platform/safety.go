package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the directory under os.TempDir() that sandboxes development runs.
const DevDirName = "bubbly-dev"

// IsDevRun reports whether the process was built by `go run` or `go test`.
// Both build their binaries in temporary directories, and test binaries end in ".test".
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath returns the directory the store should use. When forceTemp is set
// the path is re-rooted under os.TempDir()/bubbly-dev, unless it already lives in the
// temp dir (t.TempDir() paths are trusted as is).
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if userPath != "" {
		if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && !strings.HasPrefix(rel, "..") {
			return clean
		}
	}

	sub := "default"
	if userPath != "" && userPath != "." && userPath != "./" {
		// Only the base name survives, so "../foo" cannot climb out of the sandbox.
		sub = filepath.Base(clean)
		if sub == "." || sub == string(os.PathSeparator) {
			sub = "default"
		}
	}
	return filepath.Join(os.TempDir(), DevDirName, sub)
}
