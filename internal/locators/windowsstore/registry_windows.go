//go:build windows

package windowsstore

import (
	"strings"

	"golang.org/x/sys/windows/registry"
)

const appModel = `Software\Classes\Local Settings\Software\Microsoft\Windows\CurrentVersion\AppModel\`

func readString(path, name string) (string, bool) {
	key, err := registry.OpenKey(registry.CURRENT_USER, path, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer key.Close()
	value, _, err := key.GetStringValue(name)
	return value, err == nil
}

func registryLookup(name string) (*PackageInfo, bool) {
	fullName, ok := readString(appModel+`SystemAppData\`+name+`\Schemas`, "PackageFullName")
	if !ok {
		return nil, false
	}
	pkg := appModel + `Repository\Packages\` + fullName
	display, ok := readString(pkg, "DisplayName")
	if !ok {
		return nil, false
	}
	root, ok := readString(pkg, "PackageRootFolder")
	if !ok {
		return nil, false
	}
	return &PackageInfo{
		DisplayName: display,
		RootFolder:  root,
		Is64Bit:     strings.Contains(fullName, "_x64_"),
	}, true
}
