// Package pylocate discovers, identifies and resolves Python interpreters and
// the tools that manage them, without the caller knowing where any of them
// live.
//
// # Locators
//
// Each ecosystem (conda, pyenv, poetry, Homebrew, venv, the Windows Store and
// so on) is a Locator. A locator can Identify an executable it is handed,
// using nothing but the filesystem, and Find every environment it knows
// about. NewLocators returns them in the fixed order identification relies
// on: the first locator that claims an executable wins.
//
//	env := pylocate.NewOSEnvironment()
//	locators := pylocate.NewLocators(env)
//
// # Discovery
//
// Discover runs every locator's Find concurrently with scans of PATH, the
// global virtualenv folders and the caller's workspace folders, and reports
// each environment once through a Reporter:
//
//	collect := pylocate.NewCollector()
//	summary := pylocate.Discover(cfg, collect, locators, env)
//	for _, e := range collect.Result().Environments {
//		fmt.Println(e.Kind, e.Executable, e.Version)
//	}
//
// Interpreters no locator claims are run once to ask them about themselves;
// the answer is cached on disk (see cache.Init) until the executable changes.
//
// # Resolution
//
// Resolve identifies a single executable and always runs it, returning both
// the fast answer and the ground truth:
//
//	discovered, resolved := pylocate.Resolve("/usr/bin/python3", locators, nil)
//
// When the two disagree an InaccuratePythonEnvironmentInfo telemetry event is
// reported.
package pylocate
