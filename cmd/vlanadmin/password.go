package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password required: set it in the config file or run from a terminal")
	}
	fmt.Fprint(app.errOut, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(app.errOut)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
