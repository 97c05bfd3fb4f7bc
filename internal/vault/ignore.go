package vault

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ignored reports whether a vault-relative path matches an ignore glob.
func (v *Vault) ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range v.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		// A pattern like ".git/**" should also hide the bare directory.
		if dir, ok := strippedDirPattern(pattern); ok && dir == rel {
			return true
		}
	}
	return false
}

func strippedDirPattern(pattern string) (string, bool) {
	const suffix = "/**"
	if len(pattern) > len(suffix) && pattern[len(pattern)-len(suffix):] == suffix {
		return pattern[:len(pattern)-len(suffix)], true
	}
	return "", false
}
