// Package prompt asks the user yes/no questions on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// ErrInterrupted is returned when the user presses Ctrl+C at the prompt.
var ErrInterrupted = errors.New("interrupted")

// lineReader is the part of *readline.Instance that Confirm uses.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// Confirm prints question and reads answers from in until one is yes or no.
// An empty answer or end of input counts as no. Terminals get line editing
// through readline; any other input is read line by line with the question
// written to out before each read.
func Confirm(question string, in io.Reader, out io.Writer) (bool, error) {
	prompt := question + " [y/N] "

	f, ok := in.(*os.File)
	if !ok || !readline.IsTerminal(int(f.Fd())) {
		return confirm(&plainReader{prompt: prompt, scanner: bufio.NewScanner(in), out: out}, out)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		Stdin:           io.NopCloser(f),
		Stdout:          out,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		// Answers are not worth keeping in history
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create readline: %w", err)
	}
	return confirm(rl, out)
}

// plainReader reads answers from piped input. The input is not echoed, so
// each read ends the prompt line itself.
type plainReader struct {
	prompt  string
	scanner *bufio.Scanner
	out     io.Writer
}

func (p *plainReader) Readline() (string, error) {
	fmt.Fprint(p.out, p.prompt)
	defer fmt.Fprintln(p.out)

	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (p *plainReader) Close() error {
	return nil
}

func confirm(rl lineReader, out io.Writer) (bool, error) {
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return false, ErrInterrupted
			} else if err == io.EOF {
				return false, nil
			}
			return false, err
		}

		answer, ok := parseAnswer(line)
		if ok {
			return answer, nil
		}
		fmt.Fprintln(out, "Please answer y or n.")
	}
}

// parseAnswer interprets one line of input. The second result is false when
// the line is neither yes nor no.
func parseAnswer(line string) (yes bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, true
	case "", "n", "no":
		return false, true
	default:
		return false, false
	}
}
