package library

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Service is a thin façade over the Database exposing the business
// operations with their boolean contract: business-rule failures
// (duplicates, unknown titles, unmatched loans) come back as false,
// storage faults as errors. Each call is one self-contained transaction.
type Service struct {
	db         *Database
	codec      CredentialCodec
	reportPath string
	logger     *zap.Logger
}

// NewService wires the service. A nil logger disables logging.
func NewService(db *Database, codec CredentialCodec, reportPath string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, codec: codec, reportPath: reportPath, logger: logger}
}

// Close closes the underlying database.
func (s *Service) Close() error { return s.db.Close() }

// Register creates a new account with role "user". Returns false when
// the username is already taken or blank.
func (s *Service) Register(username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, nil
	}
	stored, err := s.codec.Encode(password)
	if err != nil {
		return false, fmt.Errorf("encode credential: %w", err)
	}
	if err := s.db.InsertUser(username, stored, RoleUser); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.logger.Debug("registration rejected, username taken", zap.String("username", username))
			return false, nil
		}
		return false, fmt.Errorf("register %q: %w", username, err)
	}
	s.logger.Info("user registered", zap.String("username", username))
	return true, nil
}

// Login checks the credentials and returns the account's role. ok is
// false when the username is unknown or the password does not match.
// Under the default codec the comparison is verbatim.
func (s *Service) Login(username, password string) (Role, bool, error) {
	u, err := s.db.GetUser(username)
	if errors.Is(err, ErrUnknownUser) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("login %q: %w", username, err)
	}
	if !s.codec.Verify(password, u.Password) {
		s.logger.Debug("login rejected", zap.String("username", username))
		return "", false, nil
	}
	s.logger.Info("user logged in", zap.String("username", username), zap.String("role", string(u.Role)))
	return u.Role, true, nil
}

// LookupUserID resolves a username to its identity. ok is false when no
// such account exists.
func (s *Service) LookupUserID(username string) (int64, bool, error) {
	id, err := s.db.UserID(username)
	if errors.Is(err, ErrUnknownUser) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %q: %w", username, err)
	}
	return id, true, nil
}

// AddBook inserts a new title into the catalog. Returns false when the
// title already exists or is blank.
func (s *Service) AddBook(title string) (bool, error) {
	if strings.TrimSpace(title) == "" {
		return false, nil
	}
	if err := s.db.InsertBook(title); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.logger.Debug("duplicate title rejected", zap.String("title", title))
			return false, nil
		}
		return false, fmt.Errorf("add book %q: %w", title, err)
	}
	s.logger.Info("book added", zap.String("title", title))
	return true, nil
}

// AvailableBooks returns the titles with no active loan, in storage order.
func (s *Service) AvailableBooks() ([]string, error) {
	titles, err := s.db.AvailableTitles()
	if err != nil {
		return nil, fmt.Errorf("list available books: %w", err)
	}
	return titles, nil
}

// Borrow lends the book to the user. Returns false when the title or
// user is unknown or the book is already out; on success the loan row
// and its history line are written atomically.
func (s *Service) Borrow(title, username string) (bool, error) {
	err := s.db.Borrow(title, username)
	switch {
	case err == nil:
		s.logger.Info("book borrowed", zap.String("title", title), zap.String("username", username))
		return true, nil
	case errors.Is(err, ErrUnknownBook), errors.Is(err, ErrUnknownUser), errors.Is(err, ErrBookUnavailable):
		s.logger.Debug("borrow rejected", zap.String("title", title),
			zap.String("username", username), zap.Error(err))
		return false, nil
	default:
		return false, fmt.Errorf("borrow %q: %w", title, err)
	}
}

// Return gives the book back. Returns false when that user does not
// hold that book; history is written only when a loan row was deleted.
func (s *Service) Return(title, username string) (bool, error) {
	err := s.db.Return(title, username)
	switch {
	case err == nil:
		s.logger.Info("book returned", zap.String("title", title), zap.String("username", username))
		return true, nil
	case errors.Is(err, ErrUnknownBook), errors.Is(err, ErrUnknownUser), errors.Is(err, ErrLoanNotFound):
		s.logger.Debug("return rejected", zap.String("title", title),
			zap.String("username", username), zap.Error(err))
		return false, nil
	default:
		return false, fmt.Errorf("return %q: %w", title, err)
	}
}

// History returns the user's recorded actions in insert order.
func (s *Service) History(username string) ([]string, error) {
	actions, err := s.db.History(username)
	if err != nil {
		return nil, fmt.Errorf("history for %q: %w", username, err)
	}
	return actions, nil
}

// ExportReport writes the active-loan report to dest and returns the
// path written. An empty dest falls back to the configured default.
func (s *Service) ExportReport(dest string) (string, error) {
	if dest == "" {
		dest = s.reportPath
	}
	loans, err := s.db.ActiveLoans()
	if err != nil {
		return "", fmt.Errorf("collect active loans: %w", err)
	}
	if err := WriteReport(dest, loans); err != nil {
		return "", err
	}
	s.logger.Info("report exported", zap.String("path", dest), zap.Int("loans", len(loans)))
	return dest, nil
}
