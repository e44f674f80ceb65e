package filter

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	regexCacheSize   = 256
	maxPatternLength = 1024
)

// patterns caches compile results by source pattern. A nil entry records a
// pattern that failed to compile.
var patterns *lru.Cache[string, *regexp.Regexp]

func init() {
	var err error
	patterns, err = lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		panic("filter: creating regex cache: " + err.Error())
	}
}

func compilePattern(pattern string) (*regexp.Regexp, bool) {
	if re, found := patterns.Get(pattern); found {
		return re, re != nil
	}

	if len(pattern) > maxPatternLength {
		patterns.Add(pattern, nil)
		return nil, false
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		patterns.Add(pattern, nil)
		return nil, false
	}
	patterns.Add(pattern, re)
	return re, true
}

// ValidatePattern reports whether pattern is usable by the regex operator.
func ValidatePattern(pattern string) error {
	if len(pattern) > maxPatternLength {
		return ErrPatternTooLong
	}
	_, err := regexp.Compile(pattern)
	return err
}
