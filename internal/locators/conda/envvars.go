package conda

import (
	"path/filepath"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// EnvVariables snapshots every variable conda discovery depends on. Each
// field is set explicitly so none is forgotten on either platform.
type EnvVariables struct {
	Home string
	// Root rebases absolute system paths; empty outside tests.
	Root                    string
	Path                    string
	UserProfile             string
	AllUsersProfile         string
	ProgramData             string
	HomeDrive               string
	SystemDrive             string
	CondaRoot               string
	CondaDir                string
	Conda                   string
	CondaPrefix             string
	MambaRootPrefix         string
	CondaEnvsPath           string
	Condarc                 string
	Mambarc                 string
	AnacondaProjectEnvsPath string
	ProjectDir              string
	XDGConfigHome           string
	KnownGlobalLocations    []string

	env core.Environment
}

// NewEnvVariables snapshots the variables conda discovery depends on.
func NewEnvVariables(env core.Environment) *EnvVariables {
	return &EnvVariables{
		Home:                    env.UserHome(),
		Root:                    env.Root(),
		Path:                    env.Getenv("PATH"),
		UserProfile:             env.Getenv("USERPROFILE"),
		AllUsersProfile:         env.Getenv("ALLUSERSPROFILE"),
		ProgramData:             env.Getenv("PROGRAMDATA"),
		HomeDrive:               env.Getenv("HOMEDRIVE"),
		SystemDrive:             env.Getenv("SYSTEMDRIVE"),
		CondaRoot:               env.Getenv("CONDA_ROOT"),
		CondaDir:                env.Getenv("CONDA_DIR"),
		Conda:                   env.Getenv("CONDA"),
		CondaPrefix:             env.Getenv("CONDA_PREFIX"),
		MambaRootPrefix:         env.Getenv("MAMBA_ROOT_PREFIX"),
		CondaEnvsPath:           env.Getenv("CONDA_ENVS_PATH"),
		Condarc:                 env.Getenv("CONDARC"),
		Mambarc:                 env.Getenv("MAMBARC"),
		AnacondaProjectEnvsPath: env.Getenv("ANACONDA_PROJECT_ENVS_PATH"),
		ProjectDir:              env.Getenv("PROJECT_DIR"),
		XDGConfigHome:           env.Getenv("XDG_CONFIG_HOME"),
		KnownGlobalLocations:    env.KnownGlobalSearchLocations(),
		env:                     env,
	}
}

// expand resolves ~ and $VARS in a user supplied path against this
// environment.
func (v *EnvVariables) expand(path string) string {
	getenv := func(key string) string { return "" }
	if v.env != nil {
		getenv = v.env.Getenv
	}
	return filepath.Clean(pathutil.ExpandPath(path, v.Home, getenv))
}

func (v *EnvVariables) rebase(path string) string {
	return pathutil.Rebase(v.Root, path)
}
