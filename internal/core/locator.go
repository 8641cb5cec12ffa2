package core

// Configuration carries caller hints applied to every locator before a
// discovery run.
type Configuration struct {
	// WorkspaceDirectories are project folders searched for local environments.
	WorkspaceDirectories []string
	// Executables are interpreters the caller wants identified explicitly.
	Executables            []string
	EnvironmentDirectories []string
	CondaExecutable        string
	PoetryExecutable       string
	PipenvExecutable       string
	CacheDirectory         string
}

// LocatorResult is the outcome of one full scan.
type LocatorResult struct {
	Managers     []EnvManager         `json:"managers" msgpack:"managers"`
	Environments []*PythonEnvironment `json:"environments" msgpack:"environments"`
}

// Reporter receives everything discovered. Implementations must be safe for
// concurrent use.
type Reporter interface {
	ReportManager(manager *EnvManager)
	ReportEnvironment(env *PythonEnvironment)
	ReportTelemetry(event TelemetryEvent)
}

// Locator recognizes and enumerates one ecosystem of environments.
//
// Identify must only touch the filesystem. Find reports incrementally and
// must be safe to run concurrently with Identify.
type Locator interface {
	Name() LocatorName
	SupportedKinds() []Kind
	Configure(cfg *Configuration)
	Identify(env *PythonEnv) *PythonEnvironment
	Find(reporter Reporter)
}
