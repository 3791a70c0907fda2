package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lobsterdao/mintreveal/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

type executor struct {
	CLI *cli.App
	Out *bytes.Buffer
	Err *bytes.Buffer
}

func newExecutor(t *testing.T) *executor {
	e := &executor{
		CLI: New(),
		Out: bytes.NewBuffer(nil),
		Err: bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	return e
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	return e.CLI.Run(args)
}

func (e *executor) lines() []string {
	return strings.Split(strings.TrimSuffix(e.Out.String(), "\n"), "\n")
}

func TestVersion(t *testing.T) {
	config.Version = "0.1.0-test"
	e := newExecutor(t)
	e.Run(t, "mintreveal", "--version")
	require.True(t, strings.HasPrefix(e.Out.String(), "mintreveal\nVersion: 0.1.0-test\n"))
}

func TestDefaultVersion(t *testing.T) {
	require.NotEmpty(t, New().Version)
}
