package command

import (
	"context"
	"flag"
	"io"
)

// Every verb defines and validates its own arguments and then performs its operation.  Validate
// is where the configuration is loaded and the flags are applied on top of it.

type Command interface {
	// Documentation, one line per element
	Summary() []string

	Add(fs *flag.FlagSet)

	Validate() error

	Perform(ctx context.Context, stdout io.Writer) error
}
