package exchange

import "gopkg.in/src-d/go-errors.v1"

// ErrTopicClosed is returned to a blocked Publish when Close races it.
var ErrTopicClosed = errors.NewKind("topic closed")

// ErrAlreadySubscribed reports a second Subscribe call on a topic that
// already has a subscriber — a programmer error, not a runtime condition
// to recover from (spec.md §4.5: "a topic may only be subscribed once
// ... fails loudly").
var ErrAlreadySubscribed = errors.NewKind("topic already subscribed")
