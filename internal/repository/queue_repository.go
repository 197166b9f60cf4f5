package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/compozy/m2release/internal/domain"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// QueueSchemaVersion defines the current schema version for queue files
	QueueSchemaVersion = "1.0.0"
	// QueueFilePermissions defines the permissions for queue files
	QueueFilePermissions = 0600
	// QueueDirPermissions defines the permissions for queue directories
	QueueDirPermissions = 0700
)

var (
	// ErrQueueLocked is returned when another writer holds the queue lock.
	ErrQueueLocked = errors.New("build queue is locked")
	// ErrBuildNotFound is returned when no matching build exists.
	ErrBuildNotFound = errors.New("build not found")

	projectDirPattern = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// BuildQueueRepository stores queued builds per project.
type BuildQueueRepository interface {
	Enqueue(ctx context.Context, build *domain.QueuedBuild) error
	Load(ctx context.Context, project, id string) (*domain.QueuedBuild, error)
	LatestRelease(ctx context.Context, project string) (*domain.QueuedBuild, error)
	List(ctx context.Context, project string) ([]*domain.QueuedBuild, error)
}

// QueueMetadata contains metadata about a queue file
type QueueMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
}

// QueueEntry wraps a queued build with metadata
type QueueEntry struct {
	Metadata QueueMetadata       `json:"metadata"`
	Build    *domain.QueuedBuild `json:"build"`
}

// JSONQueueRepository implements BuildQueueRepository using one JSON file per build.
type JSONQueueRepository struct {
	fs       afero.Fs
	queueDir string
	logger   *zap.Logger
}

// NewJSONQueueRepository creates a new JSON-based queue repository. Lock files
// are created on the operating system filesystem, so queueDir must be a real
// path even when fs is an in-memory filesystem.
func NewJSONQueueRepository(fs afero.Fs, queueDir string, logger *zap.Logger) *JSONQueueRepository {
	if queueDir == "" {
		queueDir = ".m2release-queue"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONQueueRepository{
		fs:       fs,
		queueDir: queueDir,
		logger:   logger,
	}
}

// Enqueue persists a build under an exclusive project lock. It returns
// ErrQueueLocked without waiting when the lock is held elsewhere.
func (r *JSONQueueRepository) Enqueue(ctx context.Context, build *domain.QueuedBuild) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.ensureProjectDir(build.Project); err != nil {
		return fmt.Errorf("failed to ensure queue directory: %w", err)
	}
	lock, err := r.tryLock(build.Project, false)
	if err != nil {
		return err
	}
	defer r.unlock(lock)
	stateData, err := json.Marshal(build)
	if err != nil {
		return fmt.Errorf("failed to marshal build for checksum: %w", err)
	}
	entry := QueueEntry{
		Metadata: QueueMetadata{
			SchemaVersion: QueueSchemaVersion,
			Checksum:      r.calculateChecksum(stateData),
			CreatedAt:     time.Now().UTC(),
		},
		Build: build,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue entry: %w", err)
	}
	filename := r.buildFilename(build.Project, build.ID)
	if err := r.writeAtomic(filename, data); err != nil {
		return fmt.Errorf("failed to write queue entry: %w", err)
	}
	if build.IsRelease() {
		if err := r.writeAtomic(r.latestReleaseLink(build.Project), []byte(filepath.Base(filename))); err != nil {
			return fmt.Errorf("failed to update latest release link: %w", err)
		}
	}
	return nil
}

// Load retrieves a queued build with checksum validation.
func (r *JSONQueueRepository) Load(ctx context.Context, project, id string) (*domain.QueuedBuild, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if exists, err := afero.DirExists(r.fs, r.projectDir(project)); err != nil || !exists {
		return nil, fmt.Errorf("%w: %s/%s", ErrBuildNotFound, project, id)
	}
	lock, err := r.tryLock(project, true)
	if err != nil {
		return nil, err
	}
	defer r.unlock(lock)
	return r.readEntry(project, r.buildFilename(project, id))
}

// LatestRelease returns the most recently queued release build of project.
func (r *JSONQueueRepository) LatestRelease(ctx context.Context, project string) (*domain.QueuedBuild, error) {
	data, err := afero.ReadFile(r.fs, r.latestReleaseLink(project))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no release queued for %s", ErrBuildNotFound, project)
		}
		return nil, fmt.Errorf("failed to read latest release link: %w", err)
	}
	id := r.extractBuildID(string(data))
	if id == "" {
		return nil, fmt.Errorf("invalid latest release link target: %s", string(data))
	}
	return r.Load(ctx, project, id)
}

// List returns every queued build of project, oldest first.
func (r *JSONQueueRepository) List(ctx context.Context, project string) ([]*domain.QueuedBuild, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := r.projectDir(project)
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	var builds []*domain.QueuedBuild
	for _, info := range infos {
		if info.IsDir() || r.extractBuildID(info.Name()) == "" {
			continue
		}
		build, err := r.readEntry(project, filepath.Join(dir, info.Name()))
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}
	sort.SliceStable(builds, func(i, j int) bool {
		return builds[i].QueuedAt.Before(builds[j].QueuedAt)
	})
	return builds, nil
}

func (r *JSONQueueRepository) readEntry(project, filename string) (*domain.QueuedBuild, error) {
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrBuildNotFound, project, filepath.Base(filename))
		}
		return nil, fmt.Errorf("failed to read queue entry: %w", err)
	}
	var entry QueueEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue entry: %w", err)
	}
	if entry.Metadata.SchemaVersion != QueueSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			QueueSchemaVersion, entry.Metadata.SchemaVersion)
	}
	buildData, err := json.Marshal(entry.Build)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal build for checksum validation: %w", err)
	}
	if entry.Metadata.Checksum != r.calculateChecksum(buildData) {
		return nil, fmt.Errorf("queue entry checksum mismatch: data may be corrupted")
	}
	return entry.Build, nil
}

func (r *JSONQueueRepository) tryLock(project string, shared bool) (*flock.Flock, error) {
	lock := flock.New(r.lockFilename(project))
	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = lock.TryRLock()
	} else {
		locked, err = lock.TryLock()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrQueueLocked
	}
	return lock, nil
}

func (r *JSONQueueRepository) unlock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		r.logger.Warn("Failed to unlock queue", zap.String("lock", lock.Path()), zap.Error(err))
	}
}

func (r *JSONQueueRepository) writeAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, QueueFilePermissions); err != nil {
		return err
	}
	if err := r.fs.Rename(tempFile, filename); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil {
			r.logger.Warn("Failed to remove temp file", zap.String("file", tempFile), zap.Error(removeErr))
		}
		return err
	}
	return nil
}

// calculateChecksum calculates SHA-256 checksum of data
func (r *JSONQueueRepository) calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ensureProjectDir creates the project queue directory on both the queue
// filesystem and, for the lock file, the operating system.
func (r *JSONQueueRepository) ensureProjectDir(project string) error {
	dir := r.projectDir(project)
	if err := r.fs.MkdirAll(dir, QueueDirPermissions); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(r.lockFilename(project)), QueueDirPermissions)
}

func (r *JSONQueueRepository) projectDir(project string) string {
	return filepath.Join(r.queueDir, projectDirPattern.ReplaceAllString(project, "_"))
}

func (r *JSONQueueRepository) buildFilename(project, id string) string {
	return filepath.Join(r.projectDir(project), fmt.Sprintf("build-%s.json", id))
}

func (r *JSONQueueRepository) lockFilename(project string) string {
	return filepath.Join(r.projectDir(project), ".queue.lock")
}

func (r *JSONQueueRepository) latestReleaseLink(project string) string {
	return filepath.Join(r.projectDir(project), "latest-release.txt")
}

// extractBuildID extracts the build ID from a queue filename
func (r *JSONQueueRepository) extractBuildID(filename string) string {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, "build-") && strings.HasSuffix(base, ".json") && len(base) > len("build-.json") {
		return strings.TrimSuffix(strings.TrimPrefix(base, "build-"), ".json")
	}
	return ""
}
