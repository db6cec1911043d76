// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hack

import (
	"regexp"
	"strings"
)

// indexMarker matches an index span: an HTML comment carrying the \index
// directive, the indexed text, and a closing <!--/i--> comment.
var indexMarker = regexp.MustCompile(`<!--(\\index.*?)-->.*?<!--/i-->`)

var supSubReplacer = strings.NewReplacer(
	"<sub>", "~",
	"</sub>", "~",
	"<sup>", "^",
	"</sup>", "^",
)

// SuperSub rewrites GitBook's <sub>/<sup> tags into pandoc's ~sub~ and ^sup^
// markers. Text without tags is returned unchanged.
func SuperSub() Hack {
	return Pure("super-sub", supSubReplacer.Replace)
}

// IndexMarkers collapses each index span to its \index directive prefixed
// with IndexSentinel. Spans do not cross line boundaries.
func IndexMarkers() Hack {
	return Pure("index-markers", func(text string) string {
		return indexMarker.ReplaceAllString(text, IndexSentinel+"${1}")
	})
}
