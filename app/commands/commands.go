// Package commands implements the store maintenance subcommands.
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkpost/app/config"
	"inkpost/app/repositories"
)

// ErrBadgerOnly is returned by commands that work on the badger directory.
var ErrBadgerOnly = errors.New("command needs STORE_DRIVER=badger")

// BackupDir is where Backup writes its files.
const BackupDir = "data/backups"

// OpenStore opens the configured store, creating the parent directory of
// a file based database first.
func OpenStore(cfg *config.Config) (repositories.Store, error) {
	switch cfg.StoreDriver {
	case repositories.DriverBadger, repositories.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return repositories.Open(cfg.StoreDriver, cfg.DatabaseURL)
}

// Init creates the store if needed and brings its schema up to date.
func Init(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(out, "Database initialized (%s at %s)\n", cfg.StoreDriver, cfg.DatabaseURL)
	return nil
}

// Backup writes a full backup of the badger store into dir and returns the
// file name.
func Backup(cfg *config.Config, dir string, now time.Time, out io.Writer) (string, error) {
	if cfg.StoreDriver != repositories.DriverBadger {
		return "", ErrBadgerOnly
	}
	if _, err := os.Stat(cfg.DatabaseURL); os.IsNotExist(err) {
		return "", fmt.Errorf("no database exists at %s", cfg.DatabaseURL)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	store, err := repositories.NewBadgerStore(cfg.DatabaseURL)
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", now.Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// Restore loads backupFile into the badger store. When the store already
// holds data the user is asked, on in, before it is replaced.
func Restore(ctx context.Context, cfg *config.Config, backupFile string, in io.Reader, out io.Writer) error {
	if cfg.StoreDriver != repositories.DriverBadger {
		return ErrBadgerOnly
	}
	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	store, err := repositories.NewBadgerStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	empty, err := store.Empty()
	if err != nil {
		store.Close()
		return err
	}
	if !empty {
		if !confirm(in, out, "Existing database found. Do you want to replace it? [y/N] ") {
			store.Close()
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
		if err := store.Close(); err != nil {
			return err
		}
		if err := os.RemoveAll(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
		if store, err = repositories.NewBadgerStore(cfg.DatabaseURL); err != nil {
			return err
		}
	}
	defer store.Close()

	if err := store.Restore(f); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

// Clean removes the badger directory after asking on in.
func Clean(cfg *config.Config, in io.Reader, out io.Writer) error {
	if cfg.StoreDriver != repositories.DriverBadger {
		return ErrBadgerOnly
	}
	if _, err := os.Stat(cfg.DatabaseURL); os.IsNotExist(err) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}
	if !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone. [y/N] ") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}
	if err := os.RemoveAll(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
