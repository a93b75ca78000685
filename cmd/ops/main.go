package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivankrstev/NojectServer-sub000/internal/ops"
	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backup":
		if err := cmdBackup(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "backup failed:", err)
			os.Exit(1)
		}
	case "restore":
		if err := cmdRestore(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "restore failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to the badger data directory")
	out := fs.String("out", "", "output archive path (.badger.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "noject-"+ts+".badger.gz")
	}

	store, err := outline.OpenBadger(outline.BadgerConfig{Path: *dataDir})
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := ops.BackupStore(store.DB(), *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.badger.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}

	store, err := outline.OpenBadger(outline.BadgerConfig{Path: *target})
	if err != nil {
		return err
	}
	defer store.Close()

	return ops.RestoreStore(store.DB(), *archive)
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  noject-ops backup  --data-dir data --out backups/backup.badger.gz")
	fmt.Println("  noject-ops restore --archive backups/backup.badger.gz --target-dir data-restored")
}
