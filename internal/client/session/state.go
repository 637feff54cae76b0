package session

import (
	"github.com/emergqr/emergqr/internal/client/models"
)

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateAuthenticatedOffline
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAuthenticatedOffline:
		return "authenticated-offline"
	default:
		return "unknown"
	}
}

// Snapshot is the observable session state.
type Snapshot struct {
	User            *models.Profile
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string

	// OfflineIdentity marks a User restored from the cached identifier
	// because the profile could not be fetched.
	OfflineIdentity bool
}

func (s Snapshot) State() State {
	switch {
	case s.IsLoading && !s.IsAuthenticated:
		return StateAuthenticating
	case s.IsAuthenticated && s.OfflineIdentity:
		return StateAuthenticatedOffline
	case s.IsAuthenticated:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// normalize re-derives IsAuthenticated so no write can break
// IsAuthenticated == (User != nil && Token != "").
func (s *Snapshot) normalize() {
	s.IsAuthenticated = s.User != nil && s.Token != ""
	if !s.IsAuthenticated {
		s.OfflineIdentity = false
	}
}
