package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/henri123lemoine/aerun/internal/aftereffects"
	"github.com/henri123lemoine/aerun/internal/app"
	"github.com/henri123lemoine/aerun/internal/config"
)

func noInstalls(string) ([]string, error) { return nil, nil }

// testEnv is a config file and temp dir private to one test.
type testEnv struct {
	configPath string
	tempDir    string
	opts       Options
}

func newTestEnv(t *testing.T, bridge aftereffects.Bridge) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		configPath: filepath.Join(dir, "config", "config.toml"),
		tempDir:    filepath.Join(dir, "tmp"),
	}
	env.opts = Options{
		Glob:    noInstalls,
		Bridge:  bridge,
		TempDir: env.tempDir,
		RunUI: func(context.Context, tea.Model) error {
			return errors.New("interactive shell not expected")
		},
	}
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(e.opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) writePaths(t *testing.T, renderer, application string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths = config.Paths{Renderer: renderer, Application: application}
	require.NoError(t, config.Save(e.configPath, cfg))
}

// writingBridge stands in for After Effects by writing names to comps.txt.
func writingBridge(tempDir string, names ...string) aftereffects.Bridge {
	return aftereffects.BridgeFunc(func(ctx context.Context, app, scriptPath string) error {
		data := strings.Join(names, "\n")
		return os.WriteFile(filepath.Join(tempDir, aftereffects.OutputFileName), []byte(data), 0644)
	})
}

func fakeRenderer(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aerender")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestComps_PrintsNamesInProjectOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	env.opts.Bridge = writingBridge(env.tempDir, "Intro", "Main Comp", "Outro")

	out, err := env.run(t, "comps", "/shots/promo.aep")
	require.NoError(t, err)
	require.Equal(t, "Intro\nMain Comp\nOutro\n", out)
}

func TestComps_BridgeFailureIsSilentUnlessStrict(t *testing.T) {
	failing := aftereffects.BridgeFunc(func(context.Context, string, string) error {
		return errors.New("After Effects got an error: application not running")
	})
	env := newTestEnv(t, failing)

	out, err := env.run(t, "comps", "/shots/promo.aep")
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = env.run(t, "comps", "--strict", "/shots/promo.aep")
	require.Error(t, err)
	require.Contains(t, err.Error(), "application not running")
}

func TestComps_UsesConfiguredApplication(t *testing.T) {
	var gotApp string
	env := newTestEnv(t, nil)
	env.opts.Bridge = aftereffects.BridgeFunc(func(ctx context.Context, app, scriptPath string) error {
		gotApp = app
		return nil
	})
	env.writePaths(t, "/AE/aerender", "/AE/Adobe After Effects 2025.app")

	_, err := env.run(t, "comps", "/p.aep")
	require.NoError(t, err)
	require.Equal(t, "/AE/Adobe After Effects 2025.app", gotApp)
}

func TestRender_StreamsOutput(t *testing.T) {
	env := newTestEnv(t, nil)
	bin := fakeRenderer(t, "echo 'PROGRESS: start'\necho 'PROGRESS: total time' >&2\n")
	env.writePaths(t, bin, "/AE/AE.app")

	out, err := env.run(t, "render", "/shots/promo.aep", "Main Comp", "/renders/promo")
	require.NoError(t, err)

	require.Contains(t, out, "▶ Starting render...")
	require.Contains(t, out, bin+" -project /shots/promo.aep -comp 'Main Comp' -output /renders/promo.mov")
	require.Contains(t, out, "PROGRESS: start\nPROGRESS: total time\n")
	require.True(t, strings.HasSuffix(out, "Render finished!\nOutput: /renders/promo.mov\n"), out)
}

func TestRender_ExitCode(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writePaths(t, fakeRenderer(t, "echo 'aerender ERROR'\nexit 3\n"), "/AE/AE.app")

	out, err := env.run(t, "render", "/p.aep", "Main", "/o.mov")
	require.NoError(t, err)
	require.Contains(t, out, "Render finished!")

	_, err = env.run(t, "render", "--fail-on-exit-code", "/p.aep", "Main", "/o.mov")
	require.EqualError(t, err, "aerender exited with code 3")
}

func TestRender_MissingRenderer(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writePaths(t, filepath.Join(t.TempDir(), "missing", "aerender"), "/AE/AE.app")

	out, err := env.run(t, "render", "/p.aep", "Main", "/o.mov")
	require.Error(t, err)
	require.Contains(t, out, "Render finished!")
}

func TestRender_RejectsEmptyFields(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "render", "/p.aep", "  ", "/o.mov")
	require.Error(t, err)
	require.Contains(t, err.Error(), "please fill in all fields")
	require.NotContains(t, out, "Starting render")
}

func TestConfig_SetThenShow(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "config", "set", "--aerender", "/New/aerender", "--app", "/New/AE.app")
	require.NoError(t, err)
	require.Equal(t, "Paths updated successfully!\n", out)

	cfg, err := config.LoadFromPath(env.configPath)
	require.NoError(t, err)
	require.Equal(t, config.Paths{Renderer: "/New/aerender", Application: "/New/AE.app"}, cfg.Paths)

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "aerender = '/New/aerender'")
	require.Contains(t, out, "after_effects = '/New/AE.app'")
}

func TestConfig_SetKeepsOtherPath(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writePaths(t, "/Old/aerender", "/Old/AE.app")

	_, err := env.run(t, "config", "set", "--aerender", "/New/aerender")
	require.NoError(t, err)

	cfg, err := config.LoadFromPath(env.configPath)
	require.NoError(t, err)
	require.Equal(t, "/New/aerender", cfg.Paths.Renderer)
	require.Equal(t, "/Old/AE.app", cfg.Paths.Application)
}

func TestConfig_SetRequiresAFlag(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.run(t, "config", "set")
	require.Error(t, err)

	_, statErr := os.Stat(env.configPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestConfig_ShowFallsBackToDefaults(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, config.DefaultRendererPath)
	require.Contains(t, out, config.DefaultApplicationPath)
}

func TestConfig_PathAndInit(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	require.Equal(t, env.configPath+"\n", out)

	_, err = env.run(t, "config", "init")
	require.NoError(t, err)
	require.FileExists(t, env.configPath)

	_, err = env.run(t, "config", "init")
	require.Error(t, err)
}

func TestRoot_LaunchesShell(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writePaths(t, "/AE/aerender", "/AE/AE.app")

	var got tea.Model
	env.opts.RunUI = func(ctx context.Context, m tea.Model) error {
		got = m
		return nil
	}

	_, err := env.run(t)
	require.NoError(t, err)
	require.IsType(t, app.Model{}, got)
	require.Contains(t, got.View(), "/AE/aerender")
}

func TestRoot_DebugToStderr(t *testing.T) {
	env := newTestEnv(t, nil)
	env.opts.Bridge = writingBridge(env.tempDir, "Main")

	cmd := NewRootCommand(env.opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", env.configPath, "--debug-file", "-", "comps", "/p.aep"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "Main\n", out.String())
	require.Contains(t, errOut.String(), "list compositions")
}
