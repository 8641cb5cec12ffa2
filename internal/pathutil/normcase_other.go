//go:build !windows

package pathutil

func normCase(path string) string {
	return path
}

func sameName(a, b string) bool {
	return a == b
}

// IsJunction is always false outside Windows.
func IsJunction(string) bool { return false }
