// Abstractions for running subprocesses and capturing their output.

package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Run the program with the arguments in the directory `dir` (or the current directory if `dir` is
// ""), collecting its output and returning it.  If there is an error in running the program or the
// program exits with a nonzero code then an error is returned along with stderr and stdout is
// empty, otherwise stdout and stderr are returned.
//
// The process is killed if the context is cancelled.

func RunSubprocess(
	ctx context.Context,
	dir, programPath string,
	arguments []string,
) (string, string, error) {
	cmd := exec.CommandContext(ctx, programPath, arguments...)
	cmd.Dir = dir
	var stdout strings.Builder
	var stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	errs := stderr.String()
	if err != nil {
		msg := fmt.Errorf("While running %s %s", programPath, strings.Join(arguments, " "))
		if errs != "" {
			msg = fmt.Errorf("%w: %s", msg, strings.TrimSpace(errs))
		}
		return "", errs, errors.Join(msg, err)
	}
	return stdout.String(), errs, nil
}
