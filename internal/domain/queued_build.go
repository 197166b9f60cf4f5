package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BuildStatus is the lifecycle state of a queued build.
type BuildStatus string

const (
	BuildStatusQueued BuildStatus = "queued"
)

// QueuedBuild is a parameterized build waiting in a project's build queue.
type QueuedBuild struct {
	ID          string           `json:"id"`
	Project     string           `json:"project"`
	QuietPeriod int              `json:"quiet_period"`
	Cause       ReleaseCause     `json:"cause"`
	Parameters  []ParameterValue `json:"parameters"`
	Release     json.RawMessage  `json:"release,omitempty"`
	Status      BuildStatus      `json:"status"`
	QueuedAt    time.Time        `json:"queued_at"`
}

// NewQueuedBuild creates a queue entry. Password parameters are masked and the
// release request is stored in its redacted JSON form. The queue is plain JSON
// on disk, so a build runner resolves credentials from its own secret store.
func NewQueuedBuild(
	project string,
	quietPeriod int,
	cause ReleaseCause,
	params []ParameterValue,
	release *ReleaseRequest,
) (*QueuedBuild, error) {
	masked := make([]ParameterValue, 0, len(params))
	for _, p := range params {
		masked = append(masked, p.Masked())
	}
	build := &QueuedBuild{
		ID:          uuid.New().String(),
		Project:     project,
		QuietPeriod: quietPeriod,
		Cause:       cause,
		Parameters:  masked,
		Status:      BuildStatusQueued,
		QueuedAt:    time.Now().UTC(),
	}
	if release != nil {
		data, err := json.Marshal(release)
		if err != nil {
			return nil, err
		}
		build.Release = data
	}
	return build, nil
}

// IsRelease reports whether the build carries a release request.
func (b *QueuedBuild) IsRelease() bool {
	return len(b.Release) > 0
}

// Parameter returns the named parameter value.
func (b *QueuedBuild) Parameter(name string) (ParameterValue, bool) {
	for _, p := range b.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterValue{}, false
}
