// Package netstatus tracks device connectivity as a single online/offline
// signal.
//
// A Provider reports raw Status values; Monitor folds them into a boolean
// and fans it out to subscribers. Reachability that is not explicitly
// confirmed counts as offline.
package netstatus

import (
	"context"
	"fmt"
)

type Status struct {
	Connected bool
	// InternetReachable is nil while reachability is unknown.
	InternetReachable *bool
}

func (s Status) Online() bool {
	return s.Connected && s.InternetReachable != nil && *s.InternetReachable
}

func (s Status) Equal(o Status) bool {
	if s.Connected != o.Connected {
		return false
	}
	if s.InternetReachable == nil || o.InternetReachable == nil {
		return s.InternetReachable == nil && o.InternetReachable == nil
	}
	return *s.InternetReachable == *o.InternetReachable
}

func (s Status) String() string {
	reach := "unknown"
	if s.InternetReachable != nil {
		reach = fmt.Sprint(*s.InternetReachable)
	}
	return fmt.Sprintf("connected=%t reachable=%s", s.Connected, reach)
}

// Reachable is a helper for building Status literals.
func Reachable(v bool) *bool { return &v }

// Provider streams connectivity changes. The channel is closed once ctx is
// done, which is how a subscriber releases it.
type Provider interface {
	Watch(ctx context.Context) <-chan Status
}
