package gen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GeneratedMarker starts the header line of every generated file.
const GeneratedMarker = "// generated"

// stubLineThreshold is the number of lines after the marker preamble at
// which a stub can no longer be the generated one.
const stubLineThreshold = 5

// generatedStub matches the whole body of a stub emitted by the stub template.
var generatedStub = regexp.MustCompile(`^private import .*\n\nclass \w+ extends \w+ \{[ \n]\}\n*$`)

// IsGeneratedStub reports whether the stub at path is untouched generator
// output that can be safely overwritten. Files that do not start with the
// generated marker belong to the user and false is returned. A file that
// starts with the marker but whose body was edited is reported as a
// StubError, as regenerating it would lose the edit.
func IsGeneratedStub(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	line, err := readLine(r)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	case !strings.HasPrefix(line, GeneratedMarker):
		return false, nil
	}
	var body []string
	for len(body) < stubLineThreshold {
		line, err := readLine(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, err
		}
		if len(body) == 0 && strings.HasPrefix(line, GeneratedMarker) {
			continue
		}
		body = append(body, line)
	}
	if len(body) == stubLineThreshold || !generatedStub.MatchString(strings.Join(body, "\n")+"\n") {
		return false, &StubError{File: filepath.Base(path)}
	}
	return true, nil
}

// readLine returns the next line without its terminator. Lines have no
// length limit. io.EOF is only returned when nothing was left to read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), err
}

// stubState classifies the stub file of a class before rendering.
func stubState(path string) (write bool, err error) {
	switch _, err := os.Stat(path); {
	case os.IsNotExist(err):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("stat stub: %w", err)
	}
	return IsGeneratedStub(path)
}
