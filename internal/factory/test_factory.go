package factory

import (
	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/mocks"
	"github.com/mcoot/aicardgame-go/internal/storage/memory"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockScheduler *mocks.MockScheduler
	MemoryStorage *memory.Storage
	MemoryQueue   *memory.Queue
}

// NewTestApp creates an App on in-memory storage with mocked time, randomness and scheduling
func NewTestApp() *TestApp {
	store := memory.New()
	queue := memory.NewQueue()
	mockClock := mocks.NewMockClock(testutil.Epoch)
	mockRandom := mocks.NewMockRandom()
	mockScheduler := mocks.NewMockScheduler(mockClock)

	app := newWithDependencies(dependencies{
		store:   store,
		queue:   queue,
		catalog: catalog.MustDefault(),
		clock:   mockClock,
		random:  mockRandom,
		sched:   mockScheduler,
	}, Config{Logger: testutil.NopLogger()})

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockScheduler: mockScheduler,
		MemoryStorage: store,
		MemoryQueue:   queue,
	}
}
