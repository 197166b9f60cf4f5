package orchestrator

import (
	"time"

	"github.com/compozy/m2release/internal/service"
)

// Timeout constants for release action operations
var (
	// DefaultViewTimeout bounds building the release form view
	DefaultViewTimeout = service.TimeoutOrDefault("M2RELEASE_VIEW_TIMEOUT", 10*time.Second, 2*time.Second)
	// DefaultSubmitTimeout bounds one release submission including scheduling
	DefaultSubmitTimeout = service.TimeoutOrDefault("M2RELEASE_SUBMIT_TIMEOUT", 60*time.Second, 5*time.Second)
)

const (
	// FailedPath is appended to the project URL when scheduling fails
	FailedPath = "/m2release/failed"
	// DefaultQuietPeriod is the quiet period handed to the scheduler
	DefaultQuietPeriod = 0
)
