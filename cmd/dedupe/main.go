package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"filedex/internal/dedup"
	"filedex/internal/index"
	"filedex/internal/indexclient"

	"golang.org/x/term"
)

const (
	// Default database directory path
	defaultDatabaseDir = "/database"
	// Default report directory path
	defaultReportDir = "/reports"
	// Default scan root
	defaultRootDir = "/files"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "scan":
		root := defaultRootDir
		if v := os.Getenv("ROOT_DIR"); v != "" {
			root = v
		}
		if len(os.Args) > 2 {
			root = os.Args[2]
		}
		if !runScan(root) {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Filedex Duplicate Scanner")
	fmt.Println("")
	fmt.Println("Usage: dedupe scan [root]")
	fmt.Println("")
	fmt.Println("Scans the indexed files beneath root for duplicates and writes")
	fmt.Println("the allFiles, duplicates, unique and deleted reports.")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR          - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Printf("  REPORT_DIR            - Path to report directory (default: %s)\n", defaultReportDir)
	fmt.Printf("  ROOT_DIR              - Default scan root (default: %s)\n", defaultRootDir)
	fmt.Println("  AUTO_DELETE_SAME_NAME - Delete same-name duplicates without prompting")
}

func runScan(root string) bool {
	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	reportDir := os.Getenv("REPORT_DIR")
	if reportDir == "" {
		reportDir = defaultReportDir
	}

	store, err := index.NewStore(context.Background(), filepath.Join(databaseDir, "filedex.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open index database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		return false
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	service := index.NewService(store)
	if err := indexclient.CheckService(service); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Query service check failed: %v\n", err)
		return false
	}

	policy := dedup.Policy{
		AutoDeleteSameName: os.Getenv("AUTO_DELETE_SAME_NAME") == "true",
		OnDelete: func(path string) {
			if err := store.RemovePath(path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to drop %s from the index: %v\n", path, err)
			}
		},
	}

	// Prompting only works on a real terminal; piped input keeps every
	// unresolved file as a duplicate
	if term.IsTerminal(int(os.Stdin.Fd())) {
		policy.Resolver = &promptResolver{input: bufio.NewReader(os.Stdin)}
	} else {
		fmt.Println("Stdin is not a terminal, unresolved files will be kept as duplicates.")
	}

	scanner := dedup.NewScanner(service, dedup.NewReportWriter(reportDir), policy)

	summary, err := scanner.Scan(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Scan failed: %v\n", err)
		return false
	}

	fmt.Println("")
	fmt.Printf("Scan of %s complete.\n", root)
	fmt.Printf("  Scanned:    %d\n", summary.Scanned)
	fmt.Printf("  Unique:     %d\n", summary.Unique)
	fmt.Printf("  Duplicates: %d\n", summary.Duplicates)
	fmt.Printf("  Deleted:    %d\n", summary.Deleted)
	fmt.Printf("Reports written to %s\n", reportDir)
	return true
}

// promptResolver asks on the terminal whether to delete each file that
// has duplicate candidates.
type promptResolver struct {
	input *bufio.Reader
}

func (p *promptResolver) Resolve(inspected dedup.Entry, sameName, differentName []dedup.Entry) bool {
	fmt.Println("")
	fmt.Printf("%s (%d bytes) has %d duplicate candidate(s):\n", inspected.Path, inspected.Size, len(sameName)+len(differentName))
	for _, e := range sameName {
		fmt.Printf("  same name:      %s\n", e.Path)
	}
	for _, e := range differentName {
		fmt.Printf("  different name: %s\n", e.Path)
	}

	fmt.Print("Delete this file? [y/N]: ")
	line, err := p.input.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading answer: %v\n", err)
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
