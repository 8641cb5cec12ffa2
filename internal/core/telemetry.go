package core

import (
	"fmt"
	"time"
)

// TelemetryEvent is implemented by every event a Reporter may receive.
type TelemetryEvent interface {
	EventName() string
}

// RefreshPerformance records durations of one discovery run.
type RefreshPerformance struct {
	Total     time.Duration            `json:"total" msgpack:"total"`
	Locators  map[string]time.Duration `json:"locators" msgpack:"locators"`
	Breakdown map[string]time.Duration `json:"breakdown" msgpack:"breakdown"`
}

func (RefreshPerformance) EventName() string { return "RefreshPerformance" }

// InaccuratePythonEnvironmentInfo is sent when a discovered environment
// disagrees with what the interpreter reported about itself.
type InaccuratePythonEnvironmentInfo struct {
	Kind                    Kind `json:"kind,omitempty" msgpack:"kind,omitempty"`
	InvalidExecutable       bool `json:"invalidExecutable" msgpack:"invalidExecutable"`
	ExecutableNotInSymlinks bool `json:"executableNotInSymlinks" msgpack:"executableNotInSymlinks"`
	InvalidPrefix           bool `json:"invalidPrefix" msgpack:"invalidPrefix"`
	InvalidVersion          bool `json:"invalidVersion" msgpack:"invalidVersion"`
	InvalidArch             bool `json:"invalidArch" msgpack:"invalidArch"`
}

func (InaccuratePythonEnvironmentInfo) EventName() string { return "InaccuratePythonEnvironmentInfo" }

// Any reports whether at least one field disagreed.
func (i InaccuratePythonEnvironmentInfo) Any() bool {
	return i.InvalidExecutable || i.ExecutableNotInSymlinks || i.InvalidPrefix ||
		i.InvalidVersion || i.InvalidArch
}

// MissingCondaEnvironments counts environments conda knows about that the
// filesystem scan did not find, and hints at why.
type MissingCondaEnvironments struct {
	Missing                   int  `json:"missing" msgpack:"missing"`
	UserProvidedCondaExe      bool `json:"userProvidedCondaExe" msgpack:"userProvidedCondaExe"`
	RootPrefixNotFound        bool `json:"rootPrefixNotFound" msgpack:"rootPrefixNotFound"`
	CondaPrefixNotFound       bool `json:"condaPrefixNotFound" msgpack:"condaPrefixNotFound"`
	CondaManagerNotFound      bool `json:"condaManagerNotFound" msgpack:"condaManagerNotFound"`
	SysRcNotFound             bool `json:"sysRcNotFound" msgpack:"sysRcNotFound"`
	UserRcNotFound            bool `json:"userRcNotFound" msgpack:"userRcNotFound"`
	OtherRcNotFound           int  `json:"otherRcNotFound" msgpack:"otherRcNotFound"`
	MissingEnvDirsFromSysRc   int  `json:"missingEnvDirsFromSysRc" msgpack:"missingEnvDirsFromSysRc"`
	MissingEnvDirsFromUserRc  int  `json:"missingEnvDirsFromUserRc" msgpack:"missingEnvDirsFromUserRc"`
	MissingEnvDirsFromOtherRc int  `json:"missingEnvDirsFromOtherRc" msgpack:"missingEnvDirsFromOtherRc"`
	MissingFromSysRcEnvDirs   int  `json:"missingFromSysRcEnvDirs" msgpack:"missingFromSysRcEnvDirs"`
	MissingFromUserRcEnvDirs  int  `json:"missingFromUserRcEnvDirs" msgpack:"missingFromUserRcEnvDirs"`
	MissingFromOtherRcEnvDirs int  `json:"missingFromOtherRcEnvDirs" msgpack:"missingFromOtherRcEnvDirs"`
}

func (MissingCondaEnvironments) EventName() string { return "MissingCondaEnvironments" }

func (m MissingCondaEnvironments) String() string {
	return fmt.Sprintf("Missing Conda Environments (%d): root prefix not found=%t, conda prefix not found=%t, manager not found=%t",
		m.Missing, m.RootPrefixNotFound, m.CondaPrefixNotFound, m.CondaManagerNotFound)
}

// MissingPoetryEnvironments is the poetry counterpart of
// MissingCondaEnvironments.
type MissingPoetryEnvironments struct {
	Missing                    int  `json:"missing" msgpack:"missing"`
	MissingInPath              int  `json:"missingInPath" msgpack:"missingInPath"`
	UserProvidedPoetryExe      bool `json:"userProvidedPoetryExe" msgpack:"userProvidedPoetryExe"`
	PoetryExeNotFound          bool `json:"poetryExeNotFound" msgpack:"poetryExeNotFound"`
	GlobalConfigNotFound       bool `json:"globalConfigNotFound" msgpack:"globalConfigNotFound"`
	CacheDirNotFound           bool `json:"cacheDirNotFound" msgpack:"cacheDirNotFound"`
	CacheDirIsDifferent        bool `json:"cacheDirIsDifferent" msgpack:"cacheDirIsDifferent"`
	VirtualenvsPathNotFound    bool `json:"virtualenvsPathNotFound" msgpack:"virtualenvsPathNotFound"`
	VirtualenvsPathIsDifferent bool `json:"virtualenvsPathIsDifferent" msgpack:"virtualenvsPathIsDifferent"`
	InProjectIsDifferent       bool `json:"inProjectIsDifferent" msgpack:"inProjectIsDifferent"`
}

func (MissingPoetryEnvironments) EventName() string { return "MissingPoetryEnvironments" }
