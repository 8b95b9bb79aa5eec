package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyOutput is returned when the program exits cleanly but prints nothing.
var ErrEmptyOutput = errors.New("program produced no output")

// DefaultTimeout bounds a single invocation when Command.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// Error is a failure reported by the program itself through an "error" member.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "program reported error: " + e.Message
}

// Command describes how to invoke one external program.
type Command struct {
	// Interpreter runs Script, e.g. "python3". Empty runs Script directly.
	Interpreter string

	// Script is the program or script path.
	Script string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Tag prefixes forwarded stderr lines, e.g. "[YOLO]".
	Tag string
}

// Configured reports whether a program has been set.
func (c *Command) Configured() bool {
	return c != nil && c.Script != ""
}

// Run executes the program with args and decodes its JSON output into v.
func (c *Command) Run(ctx context.Context, v any, args ...string) error {
	out, err := c.output(ctx, args...)
	if err != nil {
		return err
	}
	return Decode(out, v)
}

func (c *Command) output(ctx context.Context, args ...string) ([]byte, error) {
	if !c.Configured() {
		return nil, errors.New("no program configured")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, argv := c.Script, args
	if c.Interpreter != "" {
		name = c.Interpreter
		argv = append([]string{c.Script}, args...)
	}

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	c.forwardStderr(stderr.String())

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c.Script, ctxErr)
		}
		return nil, fmt.Errorf("%s failed: %w", c.Script, runErr)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, ErrEmptyOutput
	}
	return out, nil
}

func (c *Command) forwardStderr(s string) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "WARNING") {
		return
	}
	if c.Tag != "" {
		log.Printf("%s %s", c.Tag, s)
		return
	}
	log.Print(s)
}

// Decode parses a program's JSON output into v.
// A top-level "error" member is returned as *Error.
func Decode(out []byte, v any) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return fmt.Errorf("failed to parse program output: %w", err)
	}
	if probe.Error != nil {
		return &Error{Message: *probe.Error}
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("failed to parse program output: %w", err)
	}
	return nil
}
