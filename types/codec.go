package types

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	dumpHeaderWord = "List"
	openBrace      = "{"
	closeBrace     = "}"
)

// String renders the list as "{ 1, 2, 3 }", or "{ }" when empty.
func (l *IntegerList) String() string {
	var b strings.Builder
	l.WriteTo(&b)
	return b.String()
}

// WriteTo writes the brace delimited rendering of the list to w.
func (l *IntegerList) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	written := 0

	n, _ := bw.WriteString(openBrace)
	written += n
	for e := l.head; e != nil; e = e.next {
		n, _ = bw.WriteString(" " + strconv.Itoa(e.value))
		written += n
		if e.next != nil {
			n, _ = bw.WriteString(",")
			written += n
		}
	}
	n, _ = bw.WriteString(" " + closeBrace)
	written += n

	return int64(written), bw.Flush()
}

// Summary returns the element count line used by dumps and the console,
// e.g. "List contains 1 element.".
func (l *IntegerList) Summary() string {
	if l.size == 1 {
		return fmt.Sprintf("List contains %d element.", l.size)
	}
	return fmt.Sprintf("List contains %d elements.", l.size)
}

// Encode writes the text dump of l: the summary line, the rendering and a
// trailing blank line.
func Encode(w io.Writer, l *IntegerList) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", l.Summary(), l.String())
	return err
}

// Decode reads whitespace separated decimal integers from r and stops at the
// first token that is not one, including tokens too long to buffer. A stop
// is not an error; only read failures are returned.
//
// Input starting with the dump summary line written by Encode is recognised
// and the values between the braces are returned, so dumps load back into
// the list they came from.
func Decode(r io.Reader) ([]int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var values []int
	dump := false
	first := true

	for scanner.Scan() {
		token := scanner.Text()

		if first {
			first = false
			if token == dumpHeaderWord {
				dump = true
				if !skipTo(scanner, openBrace) {
					break
				}
				continue
			}
		}

		if dump {
			if token == closeBrace {
				break
			}
			token = strings.TrimSuffix(token, ",")
		}

		v, ok := parseInt(token)
		if !ok {
			break
		}
		values = append(values, v)
	}

	if err := scanner.Err(); err != nil {
		// a token too long to buffer cannot be an integer either
		if errors.Is(err, bufio.ErrTooLong) {
			return values, nil
		}
		return nil, err
	}
	return values, nil
}

func skipTo(scanner *bufio.Scanner, token string) bool {
	for scanner.Scan() {
		if scanner.Text() == token {
			return true
		}
	}
	return false
}

func parseInt(token string) (int, bool) {
	v, err := strconv.ParseInt(token, 10, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
