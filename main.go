package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"inkpost/app/commands"
	"inkpost/app/config"
	"inkpost/app/logging"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the subcommand named by os.Args[1].
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("inkpost version %s\n", CliVersion)
	case "restore":
		if len(os.Args) < 3 {
			fmt.Println("Error: backup file path required for restore")
			exit(1)
			return
		}
		run(cmd, os.Args[2:])
	case "serve", "init", "backup", "clean":
		run(cmd, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: inkpost <command> [options]

Commands:
  serve                Run the blog on HOST:PORT
  init                 Create the store and bring its schema up to date
  backup               Write a backup of the badger store to data/backups
  restore <file>       Restore the badger store from a backup
  clean                Remove the badger store
  version              Show version information
  help                 Display this help message

Configuration is read from the environment (APP_ENV, HOST, PORT,
STORE_DRIVER, DATABASE_URL, SECRET_KEY, SESSION_STORE, REDIS_ADDR, ...).
`
	fmt.Println(helpText)
}

// run loads the configuration and executes a store-backed command.
func run(cmd string, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		exit(1)
		return
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "init":
		err = commands.Init(ctx, cfg, os.Stdout)
	case "backup":
		_, err = commands.Backup(cfg, commands.BackupDir, time.Now(), os.Stdout)
	case "restore":
		err = commands.Restore(ctx, cfg, args[0], os.Stdin, os.Stdout)
	case "clean":
		err = commands.Clean(cfg, os.Stdin, os.Stdout)
	}
	if err != nil {
		logger.Error.Printf("%s: %v", cmd, err)
		exit(1)
	}
}
