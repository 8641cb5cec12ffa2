//go:build windows

package windowsregistry

import (
	"log/slog"

	"golang.org/x/sys/windows/registry"
)

func readInstallations() []Installation {
	var out []Installation
	hives := []struct {
		name string
		key  registry.Key
	}{
		{"HKLM", registry.LOCAL_MACHINE},
		{"HKCU", registry.CURRENT_USER},
	}
	for _, hive := range hives {
		python, err := registry.OpenKey(hive.key, `Software\Python`, registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			slog.Debug("failed to open registry key", "key", hive.name+`\Software\Python`, "error", err)
			continue
		}
		companies, _ := python.ReadSubKeyNames(-1)
		for _, company := range companies {
			out = append(out, readCompany(hive.name, python, company)...)
		}
		python.Close()
	}
	return out
}

func readCompany(hive string, python registry.Key, company string) []Installation {
	companyKey, err := registry.OpenKey(python, company, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		slog.Warn("failed to open registry key", "key", hive+`\Software\Python\`+company, "error", err)
		return nil
	}
	defer companyKey.Close()
	tags, _ := companyKey.ReadSubKeyNames(-1)

	var out []Installation
	for _, tag := range tags {
		tagKey, err := registry.OpenKey(companyKey, tag, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			continue
		}
		inst := Installation{Hive: hive, Company: company, Tag: tag}
		inst.Version, _, _ = tagKey.GetStringValue("Version")
		inst.SysArchitecture, _, _ = tagKey.GetStringValue("SysArchitecture")
		inst.DisplayName, _, _ = tagKey.GetStringValue("DisplayName")
		if installKey, err := registry.OpenKey(tagKey, "InstallPath", registry.QUERY_VALUE); err == nil {
			inst.InstallPath, _, _ = installKey.GetStringValue("")
			inst.ExecutablePath, _, _ = installKey.GetStringValue("ExecutablePath")
			installKey.Close()
		} else {
			slog.Warn("failed to open registry key", "key", inst.key()+`\InstallPath`, "error", err)
		}
		tagKey.Close()
		out = append(out, inst)
	}
	return out
}
