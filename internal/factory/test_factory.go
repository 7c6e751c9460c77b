package factory

import (
	"time"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/config"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/mocks"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/memory"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// DefaultTestConfig returns the game rules used by tests
func DefaultTestConfig() config.Config {
	return config.Config{
		LobbyDeadlineSec:      90,
		CollectingDeadlineSec: 60,
		DecidingDeadlineSec:   30,
		MinPerCategory:        2,
		MaxPerCategory:        3,
		AutoStartOnMin:        true,
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(DefaultTestConfig())
}

// NewTestAppWithConfig creates a test App with custom game rules
func NewTestAppWithConfig(gameCfg config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, gameCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// Close shuts down background timers
func (t *TestApp) Close() {
	t.Sessions.Shutdown()
}
