package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/game"
	"github.com/xkilldash9x/gamepilot/internal/observability"
)

// quietConfig silences the logger and strips page setup so commands can run
// against a bare mock page.
const quietConfig = `
logger:
  level: fatal
bearing:
  url: ""
  frame_selector: ""
  range_selector: ""
circle:
  url: ""
  consent_selector: ""
  start_selector: ""
`

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
}

// executeCommand runs a fresh command tree and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// createTempConfig writes content to a config file inside the test's temp dir.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fakeTabs hands the same page to every run and counts tab lifecycles.
type fakeTabs struct {
	page   game.Page
	opened int
	closed int
	shut   bool
}

func (f *fakeTabs) OpenTab(context.Context) (game.Page, func(), error) {
	f.opened++
	return f.page, func() { f.closed++ }, nil
}

func (f *fakeTabs) Close() { f.shut = true }

// stubBrowser replaces the browser launcher for the duration of the test.
func stubBrowser(t *testing.T, tabs tabOpener, launchErr error) {
	t.Helper()
	original := openBrowser
	openBrowser = func(context.Context, config.BrowserConfig, *zap.Logger) (tabOpener, error) {
		if launchErr != nil {
			return nil, launchErr
		}
		return tabs, nil
	}
	t.Cleanup(func() { openBrowser = original })
}
