package browser

import (
	"context"
	goruntime "runtime"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/internal/config"
)

func TestAllocatorOptions(t *testing.T) {
	m := &Manager{
		logger: zap.NewNop(),
		cfg: config.BrowserConfig{
			Headless: true,
			ExecPath: "/opt/chrome/chrome",
			Args:     []string{"--lang=en-US", "--mute-audio"},
			Viewport: config.ViewportConfig{Width: 1280, Height: 800},
		},
	}

	opts := m.allocatorOptions()

	// defaults, automation override, 5 fixed flags, window size, exec path, 2 args
	want := len(chromedp.DefaultExecAllocatorOptions) + 1 + 5 + 1 + 1 + 2
	if goruntime.GOOS == "linux" {
		want += 3
	}
	assert.Len(t, opts, want)

	// Building the allocator applies every option without launching Chrome.
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()
	require.NotNil(t, allocCtx)
}
