package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/api"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/repository"
)

type harness struct {
	t      *testing.T
	server string
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("TASKCTL_SERVER", "")
	t.Setenv("TASKCTL_PASSWORD", "")

	db, err := repository.InitDB(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(api.SetupRouter(
		repository.NewTaskRepository(db),
		repository.NewUserRepository(db),
		api.RouterConfig{JWTSecret: "cli-secret"},
		zap.NewNop(),
	))
	t.Cleanup(srv.Close)

	return &harness{t: t, server: srv.URL, dir: t.TempDir()}
}

func (h *harness) run(args ...string) (string, string, int) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--server", h.server, "--config-dir", h.dir}, args...)
	code := run(context.Background(), full, &out, &errOut)
	return out.String(), errOut.String(), code
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, code := h.run(args...)
	require.Equal(h.t, exitOK, code, "taskctl %s: %s", strings.Join(args, " "), errOut)
	return out
}

func (h *harness) register() {
	h.t.Helper()
	h.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret123")
}

func TestListRequiresLogin(t *testing.T) {
	h := newHarness(t)

	_, errOut, code := h.run("list")
	assert.Equal(t, exitAuth, code)
	assert.Contains(t, errOut, "not logged in")
}

func TestSessionIsPersisted(t *testing.T) {
	h := newHarness(t)
	h.register()

	cfg, err := loadConfig(h.dir)
	require.NoError(t, err)
	assert.Equal(t, h.server, cfg.Server)
	assert.NotEmpty(t, cfg.Token)

	info, err := os.Stat(filepath.Join(h.dir, configFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out := h.mustRun("whoami")
	assert.Contains(t, out, "Ada <ada@example.com>")
	assert.Contains(t, out, "0 tasks, 0 pending")
}

func TestTaskWorkflow(t *testing.T) {
	h := newHarness(t)
	h.register()

	h.mustRun("add", "Alpha", "task")
	h.mustRun("add", "Bravo task", "--priority", "high", "--due", "2026-11-01")
	h.mustRun("add", "Charlie task", "-d", "with notes")

	out := h.mustRun("list")
	assert.Contains(t, out, "1. [ ] Alpha task (medium)")
	assert.Contains(t, out, "2. [ ] Bravo task (high) due 2026-11-01")
	assert.Contains(t, out, "3. [ ] Charlie task (medium)")
	assert.Contains(t, out, "with notes")
	assert.Contains(t, out, "3 total, 0 completed, 3 pending")

	out = h.mustRun("toggle", "2")
	assert.Contains(t, out, `"Bravo task" is now completed`)

	out = h.mustRun("list", "--filter", "completed")
	assert.Contains(t, out, "2. [x] Bravo task")
	assert.NotContains(t, out, "Alpha task")
	assert.Contains(t, out, "3 total, 1 completed, 2 pending")

	out = h.mustRun("list", "-f", "pending")
	assert.NotContains(t, out, "Bravo task")

	h.mustRun("toggle", "2", "--done")
	out = h.mustRun("list", "--filter", "completed")
	assert.Contains(t, out, "2. [x] Bravo task", "--done keeps a completed task completed")

	h.mustRun("move", "3", "1")
	out = h.mustRun("list")
	charlie := strings.Index(out, "Charlie task")
	alpha := strings.Index(out, "Alpha task")
	bravo := strings.Index(out, "Bravo task")
	assert.True(t, charlie < alpha && alpha < bravo, "unexpected order:\n%s", out)
	assert.Contains(t, out, "1. [ ] Charlie task")

	h.mustRun("edit", "3", "--title", "Bravo renamed", "--clear-due", "--priority", "low")
	out = h.mustRun("list")
	assert.Contains(t, out, "3. [x] Bravo renamed (low)\n")

	h.mustRun("rm", "1")
	out = h.mustRun("list")
	assert.NotContains(t, out, "Charlie task")
	assert.Contains(t, out, "2 total, 1 completed, 1 pending")
}

func TestUserErrors(t *testing.T) {
	h := newHarness(t)
	h.register()

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"short title", []string{"add", "ab"}, "Title must be at least 3 characters"},
		{"bad priority", []string{"add", "Valid title", "-p", "urgent"}, "Priority must be one of low, medium, high"},
		{"bad due date", []string{"add", "Valid title", "--due", "tomorrow"}, "invalid date"},
		{"bad filter", []string{"list", "--filter", "someday"}, "someday"},
		{"no such position", []string{"toggle", "9"}, "no task at position 9"},
		{"unknown id", []string{"rm", "does-not-exist"}, "not found"},
		{"empty edit", []string{"edit", "1"}, "nothing to change"},
		{"bad move target", []string{"move", "1", "x"}, `invalid position "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := h.run(tt.args...)
			assert.Equal(t, exitUser, code)
			assert.Contains(t, errOut, tt.msg)
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("add", "Persisted task")
	h.mustRun("logout")

	_, _, code := h.run("list")
	assert.Equal(t, exitAuth, code)

	_, errOut, code := h.run("login", "--email", "ada@example.com", "--password", "wrong-password")
	assert.Equal(t, exitAuth, code)
	assert.Contains(t, errOut, "Invalid email or password")

	t.Setenv("TASKCTL_PASSWORD", "secret123")
	out := h.mustRun("login", "--email", "ADA@example.com")
	assert.Contains(t, out, "Signed in as ada@example.com (1 tasks)")

	out = h.mustRun("list")
	assert.Contains(t, out, "Persisted task")
}

func TestServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--server", url, "--config-dir", t.TempDir(), "list"}, &out, &errOut)
	assert.Equal(t, exitBackend, code)
	assert.Contains(t, errOut.String(), "error:")
}

func TestMoveTask(t *testing.T) {
	tasks := []models.Task{{Id: "a"}, {Id: "b"}, {Id: "c"}, {Id: "d"}}
	ids := func(ts []models.Task) string {
		var s []string
		for _, task := range ts {
			s = append(s, task.Id)
		}
		return strings.Join(s, "")
	}

	assert.Equal(t, "cabd", ids(moveTask(tasks, 2, 0)))
	assert.Equal(t, "bcda", ids(moveTask(tasks, 0, 3)))
	assert.Equal(t, "abcd", ids(moveTask(tasks, 1, 1)))
	assert.Equal(t, "abcd", ids(tasks), "input must not be modified")
}

func TestConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, defaultServer, cfg.Server)

	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte("server: [\n"), 0o600))
	_, err = loadConfig(dir)
	assert.Error(t, err)

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", appName), defaultConfigDir())
}
