package library

// Role classifies what a user account may do. Only two roles exist;
// regular registration always produces RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a registered account. The password column holds whatever the
// active credential codec produced, which is the plain credential string
// under the default codec.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
	Role     Role   `db:"role"`
}

// Book is a catalog entry. Titles are unique and immutable once inserted.
type Book struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

// Loan is an active borrow record linking one book to one user. The row
// is deleted when the book comes back, so presence means "out right now".
type Loan struct {
	ID     int64 `db:"id"`
	BookID int64 `db:"book_id"`
	UserID int64 `db:"user_id"`
}

// HistoryEntry is one append-only audit line. Username is free text, not
// a foreign key, so history survives independently of the users table.
type HistoryEntry struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Action   string `db:"action"`
}

// ActiveLoan joins a loan with its borrower and title for the report.
type ActiveLoan struct {
	Username string `db:"username"`
	Title    string `db:"title"`
}
