package dispatch

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external program and waits for it to exit
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the program with os/exec and includes its output in the
// returned error.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// CommandNotifier runs `<command> <title> <message>`
type CommandNotifier struct {
	Command string
	Run     Runner
}

// NewCommandNotifier creates a notifier backed by an external program
func NewCommandNotifier(command string) *CommandNotifier {
	return &CommandNotifier{Command: command, Run: ExecRunner}
}

func (n *CommandNotifier) Notify(ctx context.Context, title, message string) error {
	args := commandArgs(n.Command)
	if len(args) == 0 {
		return fmt.Errorf("notifier command is empty")
	}
	return n.Run(ctx, args[0], append(args[1:], title, message)...)
}

// CommandOpener runs `<command> <uri>`
type CommandOpener struct {
	Command string
	Run     Runner
}

// NewCommandOpener creates an opener backed by an external program
func NewCommandOpener(command string) *CommandOpener {
	return &CommandOpener{Command: command, Run: ExecRunner}
}

func (o *CommandOpener) Open(ctx context.Context, uri string) error {
	args := commandArgs(o.Command)
	if len(args) == 0 {
		return fmt.Errorf("opener command is empty")
	}
	return o.Run(ctx, args[0], append(args[1:], uri)...)
}

// commandArgs splits a configured command such as "gio open" into the
// executable and its leading arguments.
func commandArgs(command string) []string {
	return strings.Fields(command)
}
