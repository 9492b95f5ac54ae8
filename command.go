package autopage

import (
	"os"
	"runtime"

	"github.com/kballard/go-shellquote"
)

// Config carries the pager-relevant session settings used to compute
// environment variable overlays for the pager subprocess.
type Config struct {
	// Color allows ANSI escape sequences to reach the terminal in raw form
	Color bool

	// LineBufferingRequested indicates the caller explicitly asked for
	// line-granularity flushing
	LineBufferingRequested bool

	// ResetTerminal asks the pager to restore the terminal contents on exit
	ResetTerminal bool
}

// PagerCommand describes an external pager program: the argument vector used
// to launch it and any environment variables that configure it for a session.
type PagerCommand interface {
	// Command returns the argument vector. A nil result marks the command
	// line as unparseable.
	Command() []string

	// EnvironmentVariables returns variables to overlay on the inherited
	// environment, or nil when none apply. A variable already present in
	// the live environment is never overridden.
	EnvironmentVariables(cfg Config) map[string]string
}

// More is the more pager. It takes no configuration.
type More struct{}

// Command returns the argument vector for more
func (More) Command() []string {
	if runtime.GOOS == "windows" {
		return []string{"more.com"}
	}
	return []string{"more"}
}

// EnvironmentVariables returns nil; more has no environment configuration
func (More) EnvironmentVariables(Config) map[string]string {
	return nil
}

// Less is the less pager, configured through the LESS environment variable.
type Less struct{}

// Command returns the argument vector for less
func (Less) Command() []string {
	return []string{"less"}
}

// EnvironmentVariables returns a LESS value matching the session settings.
// An existing LESS in the environment is respected, even when empty, so
// users keep full control of their pager.
func (Less) EnvironmentVariables(cfg Config) map[string]string {
	var flags []byte
	if cfg.Color {
		// -R: pass ANSI color escapes through in raw form.
		flags = append(flags, 'R')
	}
	if !cfg.LineBufferingRequested && !cfg.ResetTerminal {
		// -F: quit immediately when the output fits on one screen. Useless
		// under line buffering (the screen may fill later) and it skips the
		// terminal reset, so it only applies when neither is requested.
		flags = append(flags, 'F')
	}
	if !cfg.ResetTerminal {
		// -X: leave the last screenful in place on exit.
		flags = append(flags, 'X')
	}
	if len(flags) == 0 {
		return nil
	}
	if _, set := os.LookupEnv("LESS"); set {
		return nil
	}
	return map[string]string{"LESS": string(flags)}
}

// LV is the lv pager, configured through the LV environment variable.
type LV struct{}

// Command returns the argument vector for lv
func (LV) Command() []string {
	return []string{"lv"}
}

// EnvironmentVariables returns an LV value matching the session settings
func (LV) EnvironmentVariables(cfg Config) map[string]string {
	if !cfg.Color {
		return nil
	}
	if _, set := os.LookupEnv("LV"); set {
		return nil
	}
	// -c: allow ANSI color escapes.
	return map[string]string{"LV": "-c"}
}

// Custom is a pager launched from a user-supplied command line, split into an
// argument vector with shell quoting rules.
type Custom string

// Command returns the parsed argument vector, or nil when the command line
// is empty or has unbalanced quoting
func (c Custom) Command() []string {
	words, err := shellquote.Split(string(c))
	if err != nil || len(words) == 0 {
		return nil
	}
	return words
}

// EnvironmentVariables applies both the less and lv overlays, since the
// command line may name either; pagers that recognize neither variable
// ignore them.
func (c Custom) EnvironmentVariables(cfg Config) map[string]string {
	env := make(map[string]string)
	for k, v := range (Less{}).EnvironmentVariables(cfg) {
		env[k] = v
	}
	for k, v := range (LV{}).EnvironmentVariables(cfg) {
		env[k] = v
	}
	if len(env) == 0 {
		return nil
	}
	return env
}

// Platform returns the conventional pager for the current operating system:
// more on Windows and AIX, less everywhere else.
func Platform() PagerCommand {
	return platformFor(runtime.GOOS)
}

// platformFor returns the conventional pager for a GOOS value
func platformFor(goos string) PagerCommand {
	switch goos {
	case "windows", "aix":
		return More{}
	default:
		return Less{}
	}
}

// FromEnvironment returns the pager named by the first of the given
// environment variables that is set to a non-empty value, falling back to
// the platform pager when none is. Tools conventionally consult their own
// variable before the generic one:
//
//	cmd := autopage.FromEnvironment("MYTOOL_PAGER", "PAGER")
func FromEnvironment(vars ...string) PagerCommand {
	for _, name := range vars {
		if cmdline := os.Getenv(name); cmdline != "" {
			return Custom(cmdline)
		}
	}
	return Platform()
}

// Default returns the pager selected by the PAGER environment variable, or
// the platform pager when PAGER is unset. Processes running with elevated
// privileges (real uid neither root nor the effective uid) ignore PAGER and
// always use the platform pager.
func Default() PagerCommand {
	if runtime.GOOS != "windows" {
		if uid := os.Getuid(); uid != 0 && uid != os.Geteuid() {
			return Platform()
		}
	}
	return FromEnvironment("PAGER")
}

// passthrough reports whether argv names a pass-through command. Setting
// PAGER=cat is the conventional way to opt out of paging entirely, and
// running cat as a subprocess would add nothing.
func passthrough(argv []string) bool {
	return len(argv) == 1 && argv[0] == "cat"
}
