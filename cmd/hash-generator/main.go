// Package main prints bcrypt hashes for user passwords, for inserting users
// by hand with the same hashing the user store applies.
//
// Passwords are taken from the arguments, or one per line from stdin when
// there are none:
//
//	hash-generator -cost 12 'correct-horse-battery'
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	passwords := flag.Args()
	if len(passwords) == 0 {
		var err error
		passwords, err = readLines(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading passwords:", err)
			os.Exit(1)
		}
	}

	if err := writeHashes(os.Stdout, passwords, *cost); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// writeHashes prints one hash per password, in input order.
func writeHashes(w io.Writer, passwords []string, cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	for _, password := range passwords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(hash)); err != nil {
			return err
		}
	}
	return nil
}
