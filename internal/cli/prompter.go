package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompter asks for project paths on the terminal. Prompts go to
// Out (stderr in practice) so piped command output stays clean.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// OpenPath asks which project file to open. Empty input cancels.
func (p *TerminalPrompter) OpenPath() (string, bool, error) {
	fmt.Fprint(p.Out, "Project file to open: ")
	line, err := p.readLine()
	if err != nil {
		return "", false, err
	}
	if line == "" {
		return "", false, nil
	}
	return line, true, nil
}

// SavePath asks where to save, seeded with a default. Empty input accepts
// the default; a single "-" cancels.
func (p *TerminalPrompter) SavePath(defaultPath string) (string, bool, error) {
	fmt.Fprintf(p.Out, "Save project to [%s]: ", defaultPath)
	line, err := p.readLine()
	if err != nil {
		return "", false, err
	}
	switch line {
	case "":
		return defaultPath, true, nil
	case "-":
		return "", false, nil
	}
	return line, true, nil
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read prompt answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
