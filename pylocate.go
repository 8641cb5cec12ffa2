package pylocate

import (
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/locators/conda"
	"github.com/richinsley/pylocate/internal/locators/homebrew"
	"github.com/richinsley/pylocate/internal/locators/linuxglobal"
	"github.com/richinsley/pylocate/internal/locators/maccmdlinetools"
	"github.com/richinsley/pylocate/internal/locators/macpythonorg"
	"github.com/richinsley/pylocate/internal/locators/macxcode"
	"github.com/richinsley/pylocate/internal/locators/pipenv"
	"github.com/richinsley/pylocate/internal/locators/pixi"
	"github.com/richinsley/pylocate/internal/locators/poetry"
	"github.com/richinsley/pylocate/internal/locators/pyenv"
	"github.com/richinsley/pylocate/internal/locators/venv"
	"github.com/richinsley/pylocate/internal/locators/venvuv"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/locators/virtualenvwrapper"
	"github.com/richinsley/pylocate/internal/locators/windowsregistry"
	"github.com/richinsley/pylocate/internal/locators/windowsstore"
	"github.com/richinsley/pylocate/internal/locators/winpython"
	"github.com/richinsley/pylocate/internal/reporter"
)

type (
	Environment       = core.Environment
	Configuration     = core.Configuration
	Locator           = core.Locator
	LocatorName       = core.LocatorName
	Reporter          = core.Reporter
	PythonEnv         = core.PythonEnv
	PythonEnvironment = core.PythonEnvironment
	EnvManager        = core.EnvManager
	Kind              = core.Kind
	LocatorResult     = core.LocatorResult
)

// Collector gathers everything reported to it; Result returns it sorted.
type Collector = reporter.Collect

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return reporter.NewCollect()
}

// NewOSEnvironment returns the Environment of the running process.
func NewOSEnvironment() Environment {
	return core.NewOSEnvironment()
}

// NewLocators returns every locator in identification order. More specific
// locators come first: a pyenv or poetry environment is also a virtualenv,
// and a Homebrew interpreter is also on a global path.
func NewLocators(env Environment) []Locator {
	condaLocator := conda.New(env)
	return []Locator{
		windowsstore.New(env),
		windowsregistry.New(condaLocator),
		winpython.New(env),
		pyenv.New(env, condaLocator),
		homebrew.New(env),
		condaLocator,
		pixi.New(),
		poetry.New(env),
		pipenv.New(env),
		virtualenvwrapper.New(env),
		venvuv.New(),
		venv.New(),
		virtualenv.New(),
		macpythonorg.New(env),
		maccmdlinetools.New(env),
		macxcode.New(env),
		linuxglobal.New(env),
	}
}
