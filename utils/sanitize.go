package utils

import "github.com/microcosm-cc/bluemonday"

// ugcPolicy allows the benign formatting subset of HTML and strips
// everything executable. Post titles, content and themes pass through it
// before they are stored, so the feed can be rendered without re-escaping.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user-supplied text.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}
