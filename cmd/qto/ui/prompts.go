package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers from an input stream one line at a time.
type Prompter struct {
	reader *bufio.Reader
}

// NewPrompter reads from r.
func NewPrompter(r io.Reader) *Prompter {
	return &Prompter{reader: bufio.NewReader(r)}
}

// Prompt prints message and returns the trimmed line typed by the user.
func (p *Prompter) Prompt(message string) (string, error) {
	fmt.Fprintf(stdout, "%s ", infoColor.Sprint(message))
	input, err := p.reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// Confirm asks the user for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	input, err := p.Prompt(fmt.Sprintf("%s [%s]:", message, defaultStr))
	if err != nil {
		return false, err
	}

	input = strings.ToLower(input)
	if input == "" {
		return defaultValue, nil
	}
	return input == "y" || input == "yes", nil
}
