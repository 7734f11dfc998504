package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "lib.db"))
	require.NoError(t, err, "open db")
	require.NoError(t, db.Initialize(testSeed(), PlainCodec{}), "initialize")
	svc := NewService(db, PlainCodec{}, filepath.Join(dir, "library_report.txt"), nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newService(t)

	created, err := svc.Register("alice", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Register("alice", "different")
	require.NoError(t, err)
	assert.False(t, created, "second registration must be rejected")

	// The first account is untouched: its original password still works.
	_, ok, err := svc.Login("alice", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = svc.Login("alice", "different")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterBlankUsername(t *testing.T) {
	svc := newService(t)

	created, err := svc.Register("   ", "pw")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSeededAdminLogin(t *testing.T) {
	svc := newService(t)

	role, ok, err := svc.Login("admin", "admin123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok, err = svc.Login("admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisteredUserGetsUserRole(t *testing.T) {
	svc := newService(t)

	created, err := svc.Register("alice", "pw")
	require.NoError(t, err)
	require.True(t, created)

	role, ok, err := svc.Login("alice", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, RoleUser, role)
}

func TestLookupUserID(t *testing.T) {
	svc := newService(t)

	id, ok, err := svc.LookupUserID("admin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Positive(t, id)

	_, ok, err = svc.LookupUserID("nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeedCatalogAndDuplicateTitles(t *testing.T) {
	svc := newService(t)

	titles, err := svc.AvailableBooks()
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultCatalog, titles)

	for _, title := range DefaultCatalog {
		added, err := svc.AddBook(title)
		require.NoError(t, err)
		assert.False(t, added, "seeded title %q must be rejected", title)
	}

	added, err := svc.AddBook("")
	require.NoError(t, err)
	assert.False(t, added, "blank title must be rejected")

	added, err = svc.AddBook("The Go Programming Language")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestBorrowRemovesTitleFromListing(t *testing.T) {
	svc := newService(t)
	mustRegister(t, svc, "alice")

	borrowed, err := svc.Borrow("Clean Code", "alice")
	require.NoError(t, err)
	require.True(t, borrowed)

	titles, err := svc.AvailableBooks()
	require.NoError(t, err)
	assert.NotContains(t, titles, "Clean Code")

	returned, err := svc.Return("Clean Code", "alice")
	require.NoError(t, err)
	require.True(t, returned)

	titles, err = svc.AvailableBooks()
	require.NoError(t, err)
	assert.Contains(t, titles, "Clean Code")
}

func TestBorrowFailures(t *testing.T) {
	svc := newService(t)
	mustRegister(t, svc, "alice")
	mustRegister(t, svc, "bob")

	borrowed, err := svc.Borrow("No Such Title", "alice")
	require.NoError(t, err)
	assert.False(t, borrowed, "unknown title")

	borrowed, err = svc.Borrow("Clean Code", "alice")
	require.NoError(t, err)
	require.True(t, borrowed)

	borrowed, err = svc.Borrow("Clean Code", "bob")
	require.NoError(t, err)
	assert.False(t, borrowed, "book already out")
}

func TestReturnWithoutLoanWritesNoHistory(t *testing.T) {
	svc := newService(t)
	mustRegister(t, svc, "alice")

	returned, err := svc.Return("Clean Code", "alice")
	require.NoError(t, err)
	assert.False(t, returned)

	actions, err := svc.History("alice")
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestEndToEndScenario(t *testing.T) {
	svc := newService(t)

	created, err := svc.Register("alice", "pw")
	require.NoError(t, err)
	require.True(t, created)

	role, ok, err := svc.Login("alice", "pw")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, RoleUser, role)

	borrowed, err := svc.Borrow("Clean Code", "alice")
	require.NoError(t, err)
	require.True(t, borrowed)

	titles, err := svc.AvailableBooks()
	require.NoError(t, err)
	require.NotContains(t, titles, "Clean Code")

	returned, err := svc.Return("Clean Code", "alice")
	require.NoError(t, err)
	require.True(t, returned)

	actions, err := svc.History("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Borrowed 'Clean Code'", "Returned 'Clean Code'"}, actions)
}

func TestExportReportSingleLoan(t *testing.T) {
	svc := newService(t)
	mustRegister(t, svc, "bob")

	borrowed, err := svc.Borrow("Clean Code", "bob")
	require.NoError(t, err)
	require.True(t, borrowed)

	path, err := svc.ExportReport("")
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, reportHeader+"bob is borrowing 'Clean Code'\n", string(body))
}

func TestExportReportEmptyStore(t *testing.T) {
	svc := newService(t)

	path, err := svc.ExportReport(filepath.Join(t.TempDir(), "empty_report.txt"))
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, reportHeader, string(body))
}

func mustRegister(t *testing.T, svc *Service, username string) {
	t.Helper()
	created, err := svc.Register(username, "pw")
	require.NoError(t, err)
	require.True(t, created)
}
