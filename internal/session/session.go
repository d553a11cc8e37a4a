// Package session models who is making a request. A Session is created per request by the
// auth middleware and passed explicitly to handlers; nothing reads a process-wide
// "current user".
package session

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrUnauthenticated is returned when an operation needs a signed-in principal.
var ErrUnauthenticated = errors.New("not signed in")

// State is the lifecycle of a session.
//
//	Unauthenticated -> Pending -> Authenticated
//	                          \-> Failed
type State int

const (
	Unauthenticated State = iota // No credentials presented
	Pending                      // Credentials presented, not yet verified
	Authenticated                // Verified; Principal is set
	Failed                       // Verification failed; Err is set
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Principal is the identity provider's view of the signed-in user.
type Principal struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
}

// Session tracks one request's authentication.
type Session struct {
	state     State
	principal Principal
	err       error
}

// New returns an unauthenticated session.
func New() *Session {
	return &Session{state: Unauthenticated}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Err returns the verification error of a Failed session.
func (s *Session) Err() error { return s.err }

// Begin moves an unauthenticated session to Pending.
func (s *Session) Begin() error {
	if s.state != Unauthenticated {
		return fmt.Errorf("cannot begin session in state %s", s.state)
	}
	s.state = Pending
	return nil
}

// Authenticate completes a pending session.
func (s *Session) Authenticate(p Principal) error {
	if s.state != Pending {
		return fmt.Errorf("cannot authenticate session in state %s", s.state)
	}
	if p.UserID == "" {
		return s.Fail(errors.New("principal has no user id"))
	}
	s.state = Authenticated
	s.principal = p
	return nil
}

// Fail marks a pending session as failed and returns err.
func (s *Session) Fail(err error) error {
	if s.state != Pending {
		return fmt.Errorf("cannot fail session in state %s", s.state)
	}
	s.state = Failed
	s.err = err
	return err
}

// Principal returns the signed-in user, or ErrUnauthenticated.
func (s *Session) Principal() (Principal, error) {
	if s == nil || s.state != Authenticated {
		return Principal{}, ErrUnauthenticated
	}
	return s.principal, nil
}

// UserID is a shortcut for Principal().UserID, empty when not authenticated.
func (s *Session) UserID() string {
	p, err := s.Principal()
	if err != nil {
		return ""
	}
	return p.UserID
}

// localsKey is the fiber.Ctx Locals key the session is stored under.
const localsKey = "session"

// Attach stores s on the request.
func Attach(c *fiber.Ctx, s *Session) {
	c.Locals(localsKey, s)
}

// From returns the request's session, or a fresh unauthenticated one.
func From(c *fiber.Ctx) *Session {
	if s, ok := c.Locals(localsKey).(*Session); ok && s != nil {
		return s
	}
	return New()
}
