// Package settings holds build metadata and the settings of one run of the
// gridkit binary.
package settings

// CliBinaryName is the canonical binary name.
const CliBinaryName = "gridkit"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// InputSettings says where records come from.
type InputSettings struct {
	// Path is the input file; empty or "-" reads stdin.
	Path string
	// Format forces a loader format instead of detecting it.
	Format string
}

// Run holds the settings of a single execution.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	IsQuiet     bool
	NoColor     bool
	// Interactive is false for snapshot and report output.
	Interactive bool
	ExitOnError bool
}

// NewCliParams returns the CLI defaults.
func NewCliParams() *Run {
	return &Run{
		Interactive: true,
		ExitOnError: true,
	}
}

// FromStdin reports whether records are read from standard input.
func (r *Run) FromStdin() bool {
	return r.Input.Path == "" || r.Input.Path == "-"
}
