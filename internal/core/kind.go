package core

import "strings"

// Kind is the category of a Python environment. The empty Kind means the
// category is unknown; it is never the same as GlobalPaths.
type Kind string

const (
	KindUnknown             Kind = ""
	KindConda               Kind = "Conda"
	KindPixi                Kind = "Pixi"
	KindHomebrew            Kind = "Homebrew"
	KindPyenv               Kind = "Pyenv"
	KindGlobalPaths         Kind = "GlobalPaths"
	KindPyenvVirtualEnv     Kind = "PyenvVirtualEnv"
	KindPipenv              Kind = "Pipenv"
	KindPoetry              Kind = "Poetry"
	KindMacPythonOrg        Kind = "MacPythonOrg"
	KindMacCommandLineTools Kind = "MacCommandLineTools"
	KindLinuxGlobal         Kind = "LinuxGlobal"
	KindMacXCode            Kind = "MacXCode"
	KindVenv                Kind = "Venv"
	KindVenvUv              Kind = "VenvUv"
	KindVirtualEnv          Kind = "VirtualEnv"
	KindVirtualEnvWrapper   Kind = "VirtualEnvWrapper"
	KindWindowsStore        Kind = "WindowsStore"
	KindWindowsRegistry     Kind = "WindowsRegistry"
	KindWinPython           Kind = "WinPython"
)

// Kinds lists every known Kind.
var Kinds = []Kind{
	KindConda, KindPixi, KindHomebrew, KindPyenv, KindGlobalPaths,
	KindPyenvVirtualEnv, KindPipenv, KindPoetry, KindMacPythonOrg,
	KindMacCommandLineTools, KindLinuxGlobal, KindMacXCode, KindVenv,
	KindVenvUv, KindVirtualEnv, KindVirtualEnvWrapper, KindWindowsStore,
	KindWindowsRegistry, KindWinPython,
}

// ParseKind matches s case-insensitively against the known kinds.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return KindUnknown, false
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "Unknown"
	}
	return string(k)
}

// Architecture of an interpreter binary.
type Architecture string

const (
	ArchX64 Architecture = "x64"
	ArchX86 Architecture = "x86"
)

// ArchFromIs64Bit maps the probe's is64_bit flag to an Architecture.
func ArchFromIs64Bit(is64 bool) Architecture {
	if is64 {
		return ArchX64
	}
	return ArchX86
}

// ManagerTool is the kind of tool that owns environments.
type ManagerTool string

const (
	ToolConda  ManagerTool = "Conda"
	ToolPoetry ManagerTool = "Poetry"
	ToolPyenv  ManagerTool = "Pyenv"
	ToolPipenv ManagerTool = "Pipenv"
)

// LocatorName identifies a locator implementation.
type LocatorName string

const (
	LocatorConda               LocatorName = "Conda"
	LocatorPixi                LocatorName = "Pixi"
	LocatorHomebrew            LocatorName = "Homebrew"
	LocatorPyenv               LocatorName = "Pyenv"
	LocatorPipenv              LocatorName = "Pipenv"
	LocatorPoetry              LocatorName = "Poetry"
	LocatorMacPythonOrg        LocatorName = "MacPythonOrg"
	LocatorMacCommandLineTools LocatorName = "MacCommandLineTools"
	LocatorMacXCode            LocatorName = "MacXCode"
	LocatorLinuxGlobal         LocatorName = "LinuxGlobal"
	LocatorVenv                LocatorName = "Venv"
	LocatorVenvUv              LocatorName = "VenvUv"
	LocatorVirtualEnv          LocatorName = "VirtualEnv"
	LocatorVirtualEnvWrapper   LocatorName = "VirtualEnvWrapper"
	LocatorWindowsStore        LocatorName = "WindowsStore"
	LocatorWindowsRegistry     LocatorName = "WindowsRegistry"
	LocatorWinPython           LocatorName = "WinPython"
)
