package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"library-inventory/library"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "library",
		Short:        "Single-session library inventory manager",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell()
		},
	}
	root.AddCommand(newShellCmd(), newInitCmd(), newReportCmd())
	return root
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive terminal session (the default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell()
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store schema and seed data, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, _, err := setup()
			if err != nil {
				return err
			}
			defer svc.Close()
			defer logger.Sync()
			fmt.Println("Store initialized.")
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [destination]",
		Short: "Export the active-loan report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, _, err := setup()
			if err != nil {
				return err
			}
			defer svc.Close()
			defer logger.Sync()

			dest := ""
			if len(args) == 1 {
				dest = args[0]
			}
			path, err := svc.ExportReport(dest)
			if err != nil {
				return err
			}
			fmt.Printf("Saved to '%s'\n", path)
			return nil
		},
	}
}

// setup loads configuration, builds the logger, opens the store, and
// runs the initializer. Initializer failures are fatal to every command.
func setup() (*library.Service, *zap.Logger, *library.Config, error) {
	cfg := library.NewConfig()

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := library.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	codec := cfg.Codec()
	if err := db.Initialize(cfg.Seed(), codec); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("initialize store: %w", err)
	}

	return library.NewService(db, codec, cfg.ReportPath, logger), logger, cfg, nil
}

// readPassword reads a masked password from the terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// runShell drives the screen state machine: login screen, register
// screen, main screen. One service call per user action.
func runShell() error {
	svc, logger, _, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()
	defer logger.Sync()

	sess := library.NewSession()
	sc := bufio.NewScanner(os.Stdin)

	fmt.Println("Library Management System")

	for {
		switch sess.State {
		case library.LoggedOut:
			if !loginScreen(sc, svc, sess) {
				return nil
			}
		case library.Registering:
			registerScreen(sc, svc, sess)
		case library.LoggedIn:
			if !mainScreen(sc, svc, sess) {
				return nil
			}
		}
	}
}

// loginScreen handles the logged-out state. Returns false to exit.
func loginScreen(sc *bufio.Scanner, svc *library.Service, sess *library.Session) bool {
	fmt.Println("\nCommands: login, register, exit")
	cmd, ok := prompt(sc, "> ")
	if !ok {
		return false
	}

	switch cmd {
	case "login":
		username, ok := prompt(sc, "Username: ")
		if !ok {
			return false
		}
		password, err := readPassword("Password: ")
		if err != nil {
			fmt.Printf("Error reading password: %v\n", err)
			return true
		}
		role, matched, err := svc.Login(username, password)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		if !matched {
			fmt.Println("Login Failed: Incorrect credentials.")
			return true
		}
		sess.LogIn(username, role)
		fmt.Printf("Welcome, %s\n", username)
	case "register":
		sess.BeginRegistration()
	case "exit":
		fmt.Println("Goodbye!")
		return false
	default:
		fmt.Println("Unknown command.")
	}
	return true
}

// registerScreen handles one registration attempt, then returns to the
// login screen on success or when the user backs out.
func registerScreen(sc *bufio.Scanner, svc *library.Service, sess *library.Session) {
	fmt.Println("\nRegister New User (empty username to go back)")
	username, ok := prompt(sc, "Username: ")
	if !ok || username == "" {
		sess.ReturnToLogin()
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	created, err := svc.Register(username, password)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !created {
		fmt.Println("Error: Username already exists.")
		return
	}
	fmt.Println("Registered! You can log in now.")
	sess.ReturnToLogin()
}

// mainScreen handles the logged-in state. Returns false to exit.
func mainScreen(sc *bufio.Scanner, svc *library.Service, sess *library.Session) bool {
	commands := "list, borrow, return, history, report, logout, exit"
	if sess.Allows(library.OpAddBook) {
		commands = "list, borrow, return, add book, history, report, logout, exit"
	}
	fmt.Printf("\nCommands: %s\n", commands)
	cmd, ok := prompt(sc, fmt.Sprintf("%s> ", sess.Username))
	if !ok {
		return false
	}

	switch cmd {
	case "list":
		showBooks(svc)
	case "borrow":
		title, ok := prompt(sc, "Book Name: ")
		if !ok {
			return false
		}
		borrowed, err := svc.Borrow(title, sess.Username)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		} else if borrowed {
			fmt.Printf("'%s' borrowed.\n", title)
			showBooks(svc)
		} else {
			fmt.Println("Error: Book unavailable or already borrowed.")
		}
	case "return":
		title, ok := prompt(sc, "Book Name: ")
		if !ok {
			return false
		}
		returned, err := svc.Return(title, sess.Username)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		} else if returned {
			fmt.Printf("'%s' returned.\n", title)
			showBooks(svc)
		} else {
			fmt.Println("Error: You didn't borrow this book.")
		}
	case "add book":
		if !sess.Allows(library.OpAddBook) {
			fmt.Println("Unknown command.")
			return true
		}
		title, ok := prompt(sc, "Book Name: ")
		if !ok {
			return false
		}
		added, err := svc.AddBook(title)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		} else if added {
			fmt.Printf("'%s' added.\n", title)
			showBooks(svc)
		} else {
			fmt.Println("Error: Book already exists or invalid.")
		}
	case "history":
		actions, err := svc.History(sess.Username)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		if len(actions) == 0 {
			fmt.Println("No activity yet.")
			return true
		}
		for _, a := range actions {
			fmt.Println(a)
		}
	case "report":
		path, err := svc.ExportReport("")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		fmt.Printf("Report Exported: Saved to '%s'\n", path)
	case "logout":
		sess.LogOut()
	case "exit":
		fmt.Println("Goodbye!")
		return false
	default:
		fmt.Println("Unknown command.")
	}
	return true
}

func showBooks(svc *library.Service) {
	books, err := svc.AvailableBooks()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Println("No books available.")
		return
	}
	fmt.Println("Available Books:")
	for _, title := range books {
		fmt.Printf("  %s\n", title)
	}
}
