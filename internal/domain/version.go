package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// SnapshotIdentifier marks a version as not yet released.
	SnapshotIdentifier = "SNAPSHOT"
	// SnapshotSuffix is the suffix carried by every development version.
	SnapshotSuffix = "-" + SnapshotIdentifier
)

var (
	// standardVersionPattern splits a version into
	// digits, annotation, annotation revision and build specifier.
	standardVersionPattern = regexp.MustCompile(
		`^((?:\d+\.)*\d+)([-_])?([a-zA-Z]*)([-_])?(\d*)(?:([-_])?(.*?))?$`,
	)
	// timestampedSnapshotPattern matches deployed snapshots such as 1.0-20240101.120000-3.
	timestampedSnapshotPattern = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6})-(\d+)$`)
)

// ErrVersionParse is returned when a version string does not follow the
// digits[-annotation[-revision]][-build] layout.
var ErrVersionParse = errors.New("unable to parse version")

// Version is a structured, Maven-style version string.
type Version struct {
	raw                    string
	digits                 []string
	annotation             string
	annotationSeparator    string
	annotationRevision     string
	annotationRevSeparator string
	buildSpecifier         string
	buildSeparator         string
}

// NewVersion parses s into a Version.
func NewVersion(s string) (*Version, error) {
	m := standardVersionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrVersionParse, s)
	}
	v := &Version{
		raw:    s,
		digits: strings.Split(m[1], "."),
	}
	if m[3] == SnapshotIdentifier {
		v.buildSeparator = m[2]
		v.buildSpecifier = m[3]
		return v, nil
	}
	v.annotationSeparator = m[2]
	v.annotation = m[3]
	if m[4] != "" && m[5] == "" {
		// the build separator was taken as the revision separator
		v.buildSeparator = m[4]
		v.buildSpecifier = m[7]
		return v, nil
	}
	v.annotationRevSeparator = m[4]
	v.annotationRevision = m[5]
	v.buildSeparator = m[6]
	v.buildSpecifier = m[7]
	return v, nil
}

// String returns the version as it was parsed or assembled.
func (v *Version) String() string {
	return v.raw
}

// IsSnapshot reports whether the version carries the snapshot suffix.
func (v *Version) IsSnapshot() bool {
	return IsSnapshotVersion(v.raw)
}

// ReleaseString returns the version without its snapshot marker.
func (v *Version) ReleaseString() string {
	base := v.raw
	if m := timestampedSnapshotPattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	for {
		trimmed := trimSnapshotSuffix(base)
		if trimmed == base {
			return base
		}
		base = trimmed
	}
}

// trimSnapshotSuffix removes one trailing "-SNAPSHOT" or "_SNAPSHOT", ignoring case.
func trimSnapshotSuffix(s string) string {
	n := len(s) - len(SnapshotSuffix)
	if n < 0 || !strings.EqualFold(s[n+1:], SnapshotIdentifier) {
		return s
	}
	if s[n] == '-' || s[n] == '_' {
		return s[:n]
	}
	return s
}

// SnapshotString returns the release string with the snapshot suffix appended.
func (v *Version) SnapshotString() string {
	base := v.ReleaseString()
	if base != "" {
		base += "-"
	}
	return base + SnapshotIdentifier
}

// Next returns the following version. A numeric annotation revision is
// incremented when present, otherwise the last digit group is.
func (v *Version) Next() (*Version, error) {
	next := *v
	next.digits = append([]string(nil), v.digits...)
	if isNumeric(v.annotationRevision) {
		rev, err := incrementVersionString(v.annotationRevision)
		if err != nil {
			return nil, err
		}
		next.annotationRevision = rev
	} else {
		last := len(next.digits) - 1
		digit, err := incrementVersionString(next.digits[last])
		if err != nil {
			return nil, err
		}
		next.digits[last] = digit
	}
	next.raw = next.assemble()
	return &next, nil
}

func (v *Version) assemble() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(v.digits, "."))
	if v.annotation != "" {
		sb.WriteString(v.annotationSeparator)
		sb.WriteString(v.annotation)
	}
	if v.annotationRevision != "" {
		if v.annotation == "" {
			sb.WriteString(v.annotationSeparator)
		} else {
			sb.WriteString(v.annotationRevSeparator)
		}
		sb.WriteString(v.annotationRevision)
	}
	if v.buildSpecifier != "" {
		sb.WriteString(v.buildSeparator)
		sb.WriteString(v.buildSpecifier)
	}
	return sb.String()
}

// IsSnapshotVersion reports whether s ends with the snapshot suffix.
func IsSnapshotVersion(s string) bool {
	return strings.HasSuffix(s, SnapshotSuffix)
}

// CompareVersions orders two version strings using semantic version rules
// after the snapshot suffix has been removed. Versions that cannot be coerced
// into semver return an error.
func CompareVersions(a, b string) (int, error) {
	va, err := semver.NewVersion(strings.TrimSuffix(a, SnapshotSuffix))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", a, err)
	}
	vb, err := semver.NewVersion(strings.TrimSuffix(b, SnapshotSuffix))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}

// incrementVersionString adds one to a numeric string, keeping zero padding.
// The result must fit in a signed 32-bit integer.
func incrementVersionString(s string) (string, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return "", fmt.Errorf("%w: component %q: %v", ErrVersionParse, s, err)
	}
	if n >= math.MaxInt32 {
		return "", fmt.Errorf("%w: component %q cannot be incremented", ErrVersionParse, s)
	}
	value := strconv.FormatInt(n+1, 10)
	if len(value) < len(s) {
		value = strings.Repeat("0", len(s)-len(value)) + value
	}
	return value, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

