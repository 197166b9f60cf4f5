package domain

// Permalink is a stable link to a build selected by a rule.
type Permalink struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// LastReleasePermalink points at the most recent release build of a project.
var LastReleasePermalink = Permalink{
	ID:          "lastReleaseBuild",
	DisplayName: "Latest Release",
}

// Permalinks returns the permalinks contributed by the release action.
// A fresh slice is returned on each call so callers cannot alter the set.
func Permalinks() []Permalink {
	return []Permalink{LastReleasePermalink}
}
