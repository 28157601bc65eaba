package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

type staticRenderer string

func (s staticRenderer) Renderer() string { return string(s) }

// fakeRenderer writes an executable shell script standing in for aerender.
func fakeRenderer(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aerender")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write fake renderer: %v", err)
	}
	return path
}

// collector gathers callbacks from a render.
type collector struct {
	mu        sync.Mutex
	lines     []string
	results   []Result
	completed chan struct{}
}

func newCollector() *collector {
	return &collector{completed: make(chan struct{}, 4)}
}

func (c *collector) onLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *collector) onComplete(r Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	c.completed <- struct{}{}
}

// output returns the lines after the command echo.
func (c *collector) output(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) < 3 || c.lines[0] != StartBanner {
		t.Fatalf("missing command echo, lines = %q", c.lines)
	}
	return c.lines[3:]
}

func TestCommandArgs(t *testing.T) {
	inv := NewInvoker(staticRenderer("/Applications/Adobe After Effects 2024/aerender"), Options{})

	got, err := inv.Command(Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"})
	if err != nil {
		t.Fatalf("Command() error: %v", err)
	}
	want := []string{
		"/Applications/Adobe After Effects 2024/aerender",
		"-project", "/p.aep",
		"-comp", "Main",
		"-output", "/o.mov",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Command() = %q, want %q", got, want)
	}
}

func TestCommandResolvesRelativePaths(t *testing.T) {
	inv := NewInvoker(staticRenderer("aerender"), Options{})

	got, err := inv.Command(Job{Project: "shots/p.aep", Comp: "Main", Output: "out.mov"})
	if err != nil {
		t.Fatalf("Command() error: %v", err)
	}
	wd, _ := os.Getwd()
	if got[2] != filepath.Join(wd, "shots/p.aep") {
		t.Errorf("project = %q, want absolute", got[2])
	}
	if got[6] != filepath.Join(wd, "out.mov") {
		t.Errorf("output = %q, want absolute", got[6])
	}
}

func TestRunEchoesCommand(t *testing.T) {
	bin := fakeRenderer(t, "exit 0\n")
	inv := NewInvoker(staticRenderer(bin), Options{})
	c := newCollector()
	job := Job{Project: "shots/p.aep", Comp: "Main Comp", Output: "out.mov"}

	inv.Run(context.Background(), job, c.onLine, c.onComplete)

	argv, err := inv.Command(job)
	if err != nil {
		t.Fatalf("Command() error: %v", err)
	}
	if len(c.lines) < 2 || c.lines[1] != FormatCommand(argv) {
		t.Errorf("echo = %q, want %q", c.lines, FormatCommand(argv))
	}
}

func TestRunPassesExactArguments(t *testing.T) {
	bin := fakeRenderer(t, `for a in "$@"; do echo "$a"; done`+"\n")
	inv := NewInvoker(staticRenderer(bin), Options{})
	c := newCollector()

	inv.Run(context.Background(), Job{Project: "/p.aep", Comp: "Main Comp", Output: "/o.mov"}, c.onLine, c.onComplete)

	want := []string{"-project", "/p.aep", "-comp", "Main Comp", "-output", "/o.mov"}
	if got := c.output(t); !reflect.DeepEqual(got, want) {
		t.Errorf("renderer saw %q, want %q", got, want)
	}
	if echo := c.lines[1]; echo != bin+" -project /p.aep -comp 'Main Comp' -output /o.mov" {
		t.Errorf("command echo = %q", echo)
	}
}

func TestRunPreservesLineOrder(t *testing.T) {
	bin := fakeRenderer(t, `i=1
while [ $i -le 1000 ]; do
  echo "line $i"
  i=$((i+1))
done
`)
	inv := NewInvoker(staticRenderer(bin), Options{})
	c := newCollector()

	inv.Run(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, c.onLine, c.onComplete)

	got := c.output(t)
	if len(got) != 1000 {
		t.Fatalf("got %d lines, want 1000", len(got))
	}
	for i, line := range got {
		if want := fmt.Sprintf("line %d", i+1); line != want {
			t.Fatalf("line %d = %q, want %q", i, line, want)
		}
	}
}

func TestRunMergesStderr(t *testing.T) {
	bin := fakeRenderer(t, "echo 'PROGRESS: start'\necho 'aerender ERROR: missing font' >&2\necho 'PROGRESS: done'\nprintf 'no newline'\n")
	inv := NewInvoker(staticRenderer(bin), Options{})
	c := newCollector()

	inv.Run(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, c.onLine, c.onComplete)

	want := []string{"PROGRESS: start", "aerender ERROR: missing font", "PROGRESS: done", "no newline"}
	if got := c.output(t); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestRunCompletesOnceRegardlessOfExitCode(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "success", body: "echo ok\nexit 0\n", code: 0},
		{name: "failure", body: "echo 'render failed'\nexit 3\n", code: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInvoker(staticRenderer(fakeRenderer(t, tt.body)), Options{})
			c := newCollector()

			inv.Run(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, c.onLine, c.onComplete)

			if len(c.results) != 1 {
				t.Fatalf("onComplete called %d times, want 1", len(c.results))
			}
			r := c.results[0]
			if r.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", r.ExitCode, tt.code)
			}
			if r.Err != nil {
				t.Errorf("Err = %v, want nil", r.Err)
			}
			if r.Succeeded() != (tt.code == 0) {
				t.Errorf("Succeeded() = %v", r.Succeeded())
			}
		})
	}
}

func TestRunMissingRendererStillCompletes(t *testing.T) {
	inv := NewInvoker(staticRenderer(filepath.Join(t.TempDir(), "no-aerender")), Options{})
	c := newCollector()

	inv.Run(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, c.onLine, c.onComplete)

	if len(c.results) != 1 {
		t.Fatalf("onComplete called %d times, want 1", len(c.results))
	}
	if c.results[0].Err == nil {
		t.Error("expected start error in result")
	}
	last := c.lines[len(c.lines)-1]
	if !strings.HasPrefix(last, "✖ ") {
		t.Errorf("last line = %q, want error echo", last)
	}
}

func TestRunUsesLiveRendererPath(t *testing.T) {
	first := fakeRenderer(t, "echo first\n")
	second := fakeRenderer(t, "echo second\n")
	src := &mutableRenderer{path: first}
	inv := NewInvoker(src, Options{})
	job := Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}

	c1 := newCollector()
	inv.Run(context.Background(), job, c1.onLine, c1.onComplete)
	src.set(second)
	c2 := newCollector()
	inv.Run(context.Background(), job, c2.onLine, c2.onComplete)

	if got := c1.output(t); !reflect.DeepEqual(got, []string{"first"}) {
		t.Errorf("first run = %q", got)
	}
	if got := c2.output(t); !reflect.DeepEqual(got, []string{"second"}) {
		t.Errorf("second run = %q", got)
	}
}

type mutableRenderer struct {
	mu   sync.Mutex
	path string
}

func (m *mutableRenderer) Renderer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

func (m *mutableRenderer) set(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = p
}

func TestStartRunsInBackground(t *testing.T) {
	bin := fakeRenderer(t, "echo hello\nexit 2\n")
	inv := NewInvoker(staticRenderer(bin), Options{})
	c := newCollector()

	task := inv.Start(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, c.onLine, c.onComplete)
	if len(task.ID) != 8 {
		t.Errorf("task ID = %q, want 8 chars", task.ID)
	}

	select {
	case <-task.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("task did not finish")
	}

	r := task.Wait()
	if r.ExitCode != 2 || r.TaskID != task.ID {
		t.Errorf("result = %+v", r)
	}
	if len(c.results) != 1 {
		t.Errorf("onComplete called %d times, want 1", len(c.results))
	}
}

func TestTaskCancel(t *testing.T) {
	bin := fakeRenderer(t, "echo waiting\nexec sleep 30\n")
	inv := NewInvoker(staticRenderer(bin), Options{})

	task := inv.Start(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, nil, nil)
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled task did not finish")
	}
	if r := task.Wait(); !errors.Is(r.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", r.Err)
	}
}

func TestRunOnPTY(t *testing.T) {
	bin := fakeRenderer(t, "echo one\necho two >&2\n")
	inv := NewInvoker(staticRenderer(bin), Options{UsePTY: true})
	c := newCollector()

	inv.Run(context.Background(), Job{Project: "/p.aep", Comp: "Main", Output: "/o.mov"}, c.onLine, c.onComplete)

	if c.results[0].Err != nil {
		t.Skipf("pty unavailable: %v", c.results[0].Err)
	}
	if got := c.output(t); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("pty lines = %q", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
