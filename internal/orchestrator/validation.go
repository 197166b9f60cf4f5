package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
)

// projectNameRegex matches project names accepted in URLs and queue paths
var projectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateProjectName validates a project name taken from a request path.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("project name too long: %d characters (max: 255)", len(name))
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("project name cannot contain consecutive dots: %s", name)
	}
	if !projectNameRegex.MatchString(name) {
		return fmt.Errorf("invalid project name format: %s", name)
	}
	return nil
}

// ValidateCaller validates a caller identity.
func ValidateCaller(caller string) error {
	if strings.TrimSpace(caller) == "" {
		return fmt.Errorf("caller identity cannot be empty")
	}
	if strings.ContainsAny(caller, "\r\n") {
		return fmt.Errorf("caller identity cannot contain line breaks")
	}
	return nil
}
