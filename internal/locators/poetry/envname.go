package poetry

import (
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"runtime"
	"strings"

	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	sanitizeName = regexp.MustCompile("[ $`!*@\"\\\\\r\n\t]")
	// {name}-{8 char hash}-py{version}
	envNamePattern = regexp.MustCompile(`^.+-[A-Za-z0-9_-]{8}-py.*$`)
)

// EnvNamePrefix returns the prefix poetry gives the environments of the
// project at cwd: the sanitized name, the first 8 characters of the urlsafe
// base64 sha256 of the folder, and "-py".
func EnvNamePrefix(name, cwd string) string {
	sanitized := []rune(sanitizeName.ReplaceAllString(strings.ToLower(name), "_"))
	if len(sanitized) > 42 {
		sanitized = sanitized[:42]
	}
	normalized := pathutil.NormCase(cwd)
	if runtime.GOOS == "windows" {
		normalized = strings.ToLower(normalized)
	}
	sum := sha256.Sum256([]byte(normalized))
	hash := base64.URLEncoding.EncodeToString(sum[:])[:8]
	return string(sanitized) + "-" + hash + "-py"
}
