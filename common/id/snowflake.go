// Package id issues snowflake identifiers for stored entities.
package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error
)

// Init sets up the generator for this process. Only the first call takes
// effect; later calls return the first call's error.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns a time-ordered id. Ordering by id therefore follows insertion
// order, which rule and mapping evaluation rely on.
func New() int64 {
	if node == nil {
		panic("id: New called before Init")
	}
	return node.Generate().Int64()
}

// Parse converts a decimal path or query parameter into an id.
func Parse(s string) (int64, error) {
	parsed, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if parsed.Int64() <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return parsed.Int64(), nil
}
