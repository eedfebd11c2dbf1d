package config

// Version is the current lix version, set at build time via -ldflags.
var Version = "0.1.0"

const SourceFileExt = ".lix"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".lix"}

// TrimSourceExt removes a recognized source extension from a filename,
// returning the original string unchanged if none matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode is set once at startup when the CLI detects a test-mode
// invocation, the same startup-flag convention the teacher's own
// cmd/funxy/main.go uses for its equivalent flag.
var IsTestMode = false
