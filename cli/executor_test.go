package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nspcc-dev/hypertrie/cli/app"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

// executor runs the hypertrie application in-process and collects its
// output. It's reusable across subtests, but not safe for parallel use.
type executor struct {
	app   *cli.App
	out   bytes.Buffer
	err   bytes.Buffer
	lines []string
}

func newExecutor(t *testing.T) *executor {
	e := &executor{app: app.New()}
	e.app.Writer = &e.out
	e.app.ErrWriter = &e.err
	exiter := cli.OsExiter
	t.Cleanup(func() { cli.OsExiter = exiter })
	return e
}

// Run runs the application with args and requires it to succeed.
func (e *executor) Run(t *testing.T, args ...string) {
	code, err := e.run(args...)
	require.NoError(t, err, e.err.String())
	require.Zero(t, code)
}

// RunWithError runs the application with args and requires it to fail with
// exit code 1.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	code, err := e.run(args...)
	require.Error(t, err)
	require.Equal(t, 1, code)
}

func (e *executor) run(args ...string) (int, error) {
	var code int
	cli.OsExiter = func(c int) { code = c }
	e.out.Reset()
	e.err.Reset()
	err := e.app.Run(args)
	e.lines = nil
	if s := strings.TrimSuffix(e.out.String(), "\n"); s != "" {
		e.lines = strings.Split(s, "\n")
	}
	return code, err
}

// checkNextLine requires the next output line to match the regexp.
func (e *executor) checkNextLine(t *testing.T, expected string) {
	require.NotEmpty(t, e.lines, "no more output, expected %q", expected)
	line := e.lines[0]
	e.lines = e.lines[1:]
	require.Regexp(t, expected, line)
}

// checkEOF requires all output to be consumed.
func (e *executor) checkEOF(t *testing.T) {
	require.Empty(t, e.lines)
}
