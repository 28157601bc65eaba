package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"

	"github.com/henri123lemoine/aerun/internal/debug"
)

// StartBanner is the first line emitted for every render.
const StartBanner = "▶ Starting render..."

// RendererSource reports the aerender executable to run.
// config.Store satisfies it.
type RendererSource interface {
	Renderer() string
}

// LineFunc receives one line of renderer output, without its line ending.
type LineFunc func(line string)

// CompleteFunc receives the outcome of a render. It is called exactly once.
type CompleteFunc func(Result)

// Result describes a finished render. A non-zero ExitCode or a non-nil Err
// is informational only; completion is reported either way.
type Result struct {
	TaskID   string
	Job      Job
	ExitCode int
	Err      error
}

// Succeeded reports whether aerender exited cleanly.
func (r Result) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Options tune how the renderer process is attached.
type Options struct {
	// UsePTY runs aerender on a pseudo-terminal instead of a pipe.
	UsePTY bool
}

// Invoker launches aerender processes.
type Invoker struct {
	renderer RendererSource
	opts     Options
}

// NewInvoker creates an Invoker that reads the renderer path from r on
// every run.
func NewInvoker(r RendererSource, opts Options) *Invoker {
	return &Invoker{renderer: r, opts: opts}
}

// Command returns the full argv for job: executable first, then the
// arguments with absolute paths.
func (inv *Invoker) Command(job Job) ([]string, error) {
	resolved, err := job.Resolve()
	if err != nil {
		return nil, err
	}
	return inv.argv(resolved), nil
}

// argv builds the command line for an already resolved job.
func (inv *Invoker) argv(resolved Job) []string {
	return append([]string{inv.renderer.Renderer()}, resolved.Args()...)
}

// Run renders job on the calling goroutine. It echoes the command, forwards
// every line of merged stdout and stderr to onLine as it arrives, waits for
// the process and then calls onComplete. There is no timeout.
func (inv *Invoker) Run(ctx context.Context, job Job, onLine LineFunc, onComplete CompleteFunc) {
	if onLine == nil {
		onLine = func(string) {}
	}
	result := inv.run(ctx, job, onLine)
	if onComplete != nil {
		onComplete(result)
	}
}

func (inv *Invoker) run(ctx context.Context, job Job, onLine LineFunc) Result {
	resolved, err := job.Resolve()
	if err != nil {
		onLine("✖ " + err.Error())
		return Result{Job: job, ExitCode: -1, Err: err}
	}

	argv := inv.argv(resolved)
	onLine(StartBanner)
	onLine(FormatCommand(argv))
	onLine("")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := inv.start(cmd)
	if err != nil {
		debug.Log("render: start %s: %v", argv[0], err)
		onLine("✖ " + err.Error())
		return Result{Job: resolved, ExitCode: -1, Err: err}
	}
	debug.Log("render: pid %d: %s", cmd.Process.Pid, FormatCommand(argv))

	forwardLines(out, onLine)
	_ = out.Close()

	err = cmd.Wait()
	code := exitCode(cmd, err)
	debug.Log("render: pid %d exited with %d", cmd.Process.Pid, code)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The exit status is carried by ExitCode.
		err = nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return Result{Job: resolved, ExitCode: code, Err: err}
}

// start launches cmd with stdout and stderr sharing one stream and returns
// the read side of that stream.
func (inv *Invoker) start(cmd *exec.Cmd) (io.ReadCloser, error) {
	if inv.opts.UsePTY {
		f, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("start %s on pty: %w", cmd.Path, err)
		}
		return f, nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	// The child holds its own copy; closing ours lets the reader see EOF.
	_ = w.Close()
	return r, nil
}

// forwardLines calls onLine for each line read from r until r is exhausted.
// A pty reports EIO once the child is gone; any read error ends the stream.
func forwardLines(r io.Reader, onLine LineFunc) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			onLine(strings.TrimSuffix(line, "\r"))
		}
		if err != nil {
			return
		}
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}
