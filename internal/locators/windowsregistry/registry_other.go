//go:build !windows

package windowsregistry

func readInstallations() []Installation { return nil }
