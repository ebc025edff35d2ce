package factory

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcoot/buzzrelay/internal/dependencies/mocks"
	"github.com/mcoot/buzzrelay/internal/session"
	"github.com/mcoot/buzzrelay/internal/storage"
	"github.com/mcoot/buzzrelay/internal/storage/memory"
	"github.com/mcoot/buzzrelay/internal/testutil"
)

// TestOrphanTTL is the room expiry used by test apps
const TestOrphanTTL = 10 * time.Minute

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	FakeClock  *clockwork.FakeClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an in-memory App with a fake clock and mocked randomness.
// Rooms are swept only when Coordinator.Sweep is called.
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage is NewTestApp over the given storage backend
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, fakeClock, mockRandom, session.Config{OrphanTTL: TestOrphanTTL}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		FakeClock:  fakeClock,
		MockRandom: mockRandom,
	}
}
