//go:build !windows

package windowsstore

func registryLookup(string) (*PackageInfo, bool) { return nil, false }
