package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	fail  error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.fail
}

func (f *fakeExec) Open(ctx context.Context, args []string) error { return f.record("open", args) }
func (f *fakeExec) Add(ctx context.Context, args []string) error { return f.record("add", args) }
func (f *fakeExec) List(ctx context.Context) error { return f.record("ls", nil) }
func (f *fakeExec) Remove(ctx context.Context, args []string) error { return f.record("rm", args) }
func (f *fakeExec) Move(ctx context.Context, args []string) error { return f.record("mv", args) }
func (f *fakeExec) Save(ctx context.Context, args []string) error { return f.record("save", args) }
func (f *fakeExec) Status(ctx context.Context) error { return f.record("status", nil) }

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	lines := capturePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"open l1",
		"",
		"add a.png b.png",
		"list",
		"rm 1",
		"mv 0 2",
		"save -f",
		"status",
		"foobar",
		"exit",
		"ls",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(l1 online)" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"open l1", "add a.png b.png", "ls", "rm 1", "mv 0 2", "save -f", "status"}, exec.calls)
	assert.Contains(t, *lines, "sk (l1 online)>")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
	assert.Contains(t, strings.Join(*lines, "\n"), "Available commands:")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{fail: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("ls\nstatus\n")))

	assert.Equal(t, []string{"ls", "status"}, exec.calls)
	assert.Contains(t, *lines, "Error: boom")
}

func TestRunREPL_EOF(t *testing.T) {
	capturePrint(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))
	assert.Empty(t, exec.calls)
}
