package service

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Retry settings for queue access while another writer holds the queue lock.
var (
	// DefaultRetryCount is the number of retries after the first enqueue attempt
	DefaultRetryCount = uint64(getRetryCountOrDefault("M2RELEASE_RETRY_COUNT", 5, 2))
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = TimeoutOrDefault("M2RELEASE_RETRY_DELAY", 200*time.Millisecond, 10*time.Millisecond)
	// DefaultScheduleTimeout bounds a single ScheduleBuild call
	DefaultScheduleTimeout = TimeoutOrDefault("M2RELEASE_SCHEDULE_TIMEOUT", 30*time.Second, 2*time.Second)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// TimeoutOrDefault returns the duration in envVar, else the production or
// test default depending on how the process was started
func TimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

// getRetryCountOrDefault returns production retry count or test retry count based on environment
func getRetryCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil && count >= 0 {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
