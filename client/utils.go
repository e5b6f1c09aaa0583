package client

import (
	"bufio"
	"context"
	"io"
)

// SubscribeToInput streams the non-empty lines of r. The lines channel is
// closed when r is exhausted, after which errChan yields the read error, if
// any.
func SubscribeToInput(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
		errChan <- scanner.Err()
	}()

	return lines, errChan
}
