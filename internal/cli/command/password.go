package command

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklog-go/internal/core/service"
)

// HashPasswordCommand returns the hash-password command.
func HashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print an argon2id hash for security.password_hash",
		ArgsUsage: "[password]",
		Description: "Reads the password from the first argument, or from the first line of\n" +
			"standard input when no argument is given.",
		Action: hashPassword,
	}
}

func hashPassword(c *cli.Context) error {
	password := c.Args().First()
	if password == "" {
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password given")
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, hash)
	return err
}
