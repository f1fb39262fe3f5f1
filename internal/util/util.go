package util

import "strings"

const placeholder = "_"

var tagReplacer = strings.NewReplacer(
	"/", placeholder,
	"\\", placeholder,
	":", placeholder,
	"*", placeholder,
	"?", placeholder,
	"\"", placeholder,
	"<", placeholder,
	">", placeholder,
	"|", placeholder,
)

// SanitizeTag makes a release tag usable as a directory name by replacing
// path separators and other unsafe characters with a placeholder.
func SanitizeTag(tag string) string {
	return tagReplacer.Replace(tag)
}

// RepoShortName returns the name part of an "owner/name" repository id.
func RepoShortName(repo string) string {
	if idx := strings.LastIndex(repo, "/"); idx >= 0 {
		return repo[idx+1:]
	}

	return repo
}
