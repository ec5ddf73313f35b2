package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// lineReader turns an input stream into a channel of trimmed lines. The
// channel is closed at EOF.
type lineReader struct {
	lines chan string
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string)}
	go func() {
		defer close(lr.lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lr.lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return lr
}

// ask prints question and waits for the next line.
func (lr *lineReader) ask(out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, ok := <-lr.lines
	if !ok {
		fmt.Fprintln(out)
		return "", io.EOF
	}
	return line, nil
}
