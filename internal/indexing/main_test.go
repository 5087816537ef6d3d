package indexing

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures Watcher's debounce timers and its event-loop goroutine
// never outlive Close, since this package is the only one that starts
// background goroutines in the first place.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
