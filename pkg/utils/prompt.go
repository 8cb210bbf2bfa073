package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/moby/term"
)

// Prompter asks one question and returns the raw answer. io.EOF means no more input.
type Prompter interface {
	Ask(message string) (string, error)
}

// LinePrompter reads answers line by line, suitable for pipes and tests.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Ask(message string) (string, error) {
	fmt.Fprintf(p.out, "%s\n> ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SurveyPrompter renders prompts with survey on a terminal.
type SurveyPrompter struct {
	stdio terminal.Stdio
}

func NewSurveyPrompter(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *SurveyPrompter {
	return &SurveyPrompter{stdio: terminal.Stdio{In: in, Out: out, Err: errOut}}
}

func (p *SurveyPrompter) Ask(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message}, &answer,
		survey.WithStdio(p.stdio.In, p.stdio.Out, p.stdio.Err))
	if err == terminal.InterruptErr {
		return "", io.EOF
	}
	return answer, err
}

// NewPrompter picks survey when stdin is a terminal and plain line reading otherwise.
func NewPrompter(in *os.File, out *os.File) Prompter {
	if fd, isTerm := term.GetFdInfo(in); isTerm && term.IsTerminal(fd) {
		return NewSurveyPrompter(in, out, out)
	}
	return NewLinePrompter(in, out)
}
