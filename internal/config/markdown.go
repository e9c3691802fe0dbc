package config

import "regexp"

const (
	// WordsPerMinute drives the read time shown on blog cards.
	WordsPerMinute = 200
)

var (
	// RegexCallout matches "// <<1>>" markers in highlighted, HTML-escaped code
	RegexCallout = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)
)
