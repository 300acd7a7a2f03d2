// Command adduser creates an account from the terminal, for operator
// bootstrap and local development.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	question := fs.String("question", core.SecurityQuestions()[0], "Security question")
	answer := fs.String("answer", "", "Security answer")
	dbPath := fs.String("db", "./data/smartexpense.db", "Path to database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *email == "" || *answer == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> -answer <answer> [-password <password>] [-question <question>] [-db <db_path>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: user, email, answer")
	}
	if !core.IsValidEmail(*email) {
		return fmt.Errorf("invalid email address %q", *email)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if !core.IsValidPassword(strings.TrimSpace(password)) {
		return errors.New("password must be at least 6 characters")
	}

	if path := os.Getenv("SQLITE_DB_PATH"); path != "" && *dbPath == "./data/smartexpense.db" {
		*dbPath = path
	}

	store, err := storage.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	users := storage.NewUserRepository(store)
	id, err := users.Create(context.Background(), core.User{
		Username:         *username,
		Email:            *email,
		Password:         password,
		SecurityQuestion: *question,
		SecurityAnswer:   *answer,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return fmt.Errorf("email %s is already registered", *email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", *username, id)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal stdin (tests, pipes).
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
