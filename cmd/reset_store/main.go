package main

import (
	"fmt"
	"os"

	"library-inventory/library"
)

// reset_store wipes the database file and rebuilds it from seed data.
// Meant for development and demos, not for a store holding real loans.
func main() {
	cfg := library.NewConfig()

	fmt.Println("Cleaning up existing database files...")
	dbFiles := []string{cfg.DatabasePath, cfg.DatabasePath + "-shm", cfg.DatabasePath + "-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}

	db, err := library.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	codec := cfg.Codec()
	if err := db.Initialize(cfg.Seed(), codec); err != nil {
		db.Close()
		fmt.Fprintf(os.Stderr, "Error seeding database: %v\n", err)
		os.Exit(1)
	}

	svc := library.NewService(db, codec, cfg.ReportPath, nil)
	defer svc.Close()

	titles, err := svc.AvailableBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Store reset complete: admin '%s' and %d catalog titles seeded.\n",
		cfg.AdminUsername, len(titles))
	for _, title := range titles {
		fmt.Printf("  %s\n", title)
	}
}
