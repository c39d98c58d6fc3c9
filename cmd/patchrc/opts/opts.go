package opts

import (
	"io"
	"os"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// ConfigFile is an optional .yaml, .json or .hcl config
	ConfigFile string
	Debug      bool
	Verbose    bool

	Stdout io.Writer
	Stderr io.Writer
}

// NewRootOpts returns options writing to the process streams
func NewRootOpts() *RootOpts {
	return &RootOpts{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
