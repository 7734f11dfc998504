package library

import "errors"

// ErrBadTransition is returned for a screen transition the state
// machine does not define.
var ErrBadTransition = errors.New("invalid screen transition")

// ScreenState enumerates the three screens of the application.
type ScreenState int

const (
	LoggedOut ScreenState = iota
	Registering
	LoggedIn
)

func (s ScreenState) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Registering:
		return "registering"
	case LoggedIn:
		return "logged-in"
	}
	return "unknown"
}

// Operation names a service call the presentation boundary may attempt.
type Operation int

const (
	OpLogin Operation = iota
	OpRegister
	OpAddBook
	OpListBooks
	OpBorrow
	OpReturn
	OpHistory
	OpReport
	OpLogout
)

// Session holds the only state the presentation boundary owns between
// service calls: the current screen plus the logged-in username and role.
type Session struct {
	State    ScreenState
	Username string
	Role     Role
}

// NewSession starts at the login screen.
func NewSession() *Session {
	return &Session{State: LoggedOut}
}

// Allows reports whether op may be invoked from the current screen.
// AddBook additionally requires the admin role, matching the original
// surface where only admins were offered the control at all.
func (s *Session) Allows(op Operation) bool {
	switch s.State {
	case LoggedOut:
		return op == OpLogin
	case Registering:
		return op == OpRegister
	case LoggedIn:
		switch op {
		case OpAddBook:
			return s.Role == RoleAdmin
		case OpListBooks, OpBorrow, OpReturn, OpHistory, OpReport, OpLogout:
			return true
		}
	}
	return false
}

// BeginRegistration moves from the login screen to the register screen.
func (s *Session) BeginRegistration() error {
	if s.State != LoggedOut {
		return ErrBadTransition
	}
	s.State = Registering
	return nil
}

// ReturnToLogin leaves the register screen, whether registration
// succeeded or the user backed out.
func (s *Session) ReturnToLogin() error {
	if s.State != Registering {
		return ErrBadTransition
	}
	s.State = LoggedOut
	return nil
}

// LogIn records credentials the service accepted and moves to the main
// screen.
func (s *Session) LogIn(username string, role Role) error {
	if s.State != LoggedOut {
		return ErrBadTransition
	}
	s.State = LoggedIn
	s.Username = username
	s.Role = role
	return nil
}

// LogOut clears the identity and moves back to the login screen.
func (s *Session) LogOut() error {
	if s.State != LoggedIn {
		return ErrBadTransition
	}
	s.State = LoggedOut
	s.Username = ""
	s.Role = ""
	return nil
}
