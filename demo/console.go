// Package demo drives an IntegerList from a numbered text menu.
package demo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inconshreveable/log15"

	"intlist/storage"
	"intlist/types"
)

const welcome = `Welcome to the interactive demo for the integer linked list.
Details of the list are printed after each operation.
`

const menu = `What would you like to do?
 0. Exit
 1. Push a value to the front
 2. Push a value to the back
 3. Pop the front value
 4. Pop the back value
 5. Remove the value at an index
 6. Remove every occurrence of a value
 7. Print the list
 8. Search for a value
 9. Load values from a file
10. Save the list to a file
11. Read the front value
12. Read the back value
13. Read the value at an index
14. Clear the list
`

const (
	choiceExit = iota
	choicePushFront
	choicePushBack
	choicePopFront
	choicePopBack
	choiceRemoveAt
	choiceRemoveValue
	choicePrint
	choiceSearch
	choiceLoad
	choiceSave
	choiceFront
	choiceBack
	choiceElementAt
	choiceClear
)

// errInputClosed ends the session when the input runs out mid prompt.
var errInputClosed = errors.New("input closed")

type Console struct {
	list    *types.IntegerList
	store   storage.Store
	in      *bufio.Scanner
	out     io.Writer
	display Display
	logger  log15.Logger
}

func NewConsole(list *types.IntegerList, store storage.Store, in io.Reader, out io.Writer, display Display, logger log15.Logger) *Console {
	if display == nil {
		display = NopDisplay{}
	}
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	return &Console{
		list:    list,
		store:   store,
		in:      bufio.NewScanner(in),
		out:     out,
		display: display,
		logger:  logger,
	}
}

// Run shows the menu and applies selections until the user exits, the input
// ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.display.ClearDisplay()
	fmt.Fprint(c.out, welcome)
	c.printList()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, menu)
		line, ok := c.readLine("> ")
		if !ok {
			return c.inputErr()
		}

		choice, err := strconv.Atoi(line)
		if err != nil || choice < choiceExit || choice > choiceClear {
			fmt.Fprintf(c.out, "Invalid selection %q, please choose a number from the menu.\n\n", line)
			continue
		}
		if choice == choiceExit {
			fmt.Fprintln(c.out, "Goodbye.")
			return nil
		}

		c.display.ClearDisplay()
		if err := c.apply(ctx, choice); err != nil {
			if errors.Is(err, errInputClosed) {
				return c.inputErr()
			}
			return err
		}
		c.printList()
	}
}

func (c *Console) apply(ctx context.Context, choice int) error {
	switch choice {
	case choicePushFront:
		v, err := c.readInt("Value to push to the front: ")
		if err != nil {
			return err
		}
		c.list.PushFront(v)
		c.logger.Info("PushFront() done", "value", v)

	case choicePushBack:
		v, err := c.readInt("Value to push to the back: ")
		if err != nil {
			return err
		}
		c.list.PushBack(v)
		c.logger.Info("PushBack() done", "value", v)

	case choicePopFront:
		if v, ok := c.list.PopFront(); ok {
			fmt.Fprintf(c.out, "Removed %d from the front.\n", v)
			c.logger.Info("PopFront() done", "value", v)
		} else {
			fmt.Fprintln(c.out, "The list is empty, nothing to remove.")
		}

	case choicePopBack:
		if v, ok := c.list.PopBack(); ok {
			fmt.Fprintf(c.out, "Removed %d from the back.\n", v)
			c.logger.Info("PopBack() done", "value", v)
		} else {
			fmt.Fprintln(c.out, "The list is empty, nothing to remove.")
		}

	case choiceRemoveAt:
		i, ok, err := c.readIndex("Index to remove: ")
		if err != nil || !ok {
			return err
		}
		if err := c.list.RemoveAt(i); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed the value at index %d.\n", i)
		c.logger.Info("RemoveAt() done", "index", i)

	case choiceRemoveValue:
		v, err := c.readInt("Value to remove: ")
		if err != nil {
			return err
		}
		n := c.list.RemoveValue(v)
		fmt.Fprintf(c.out, "Removed %d occurrence(s) of %d.\n", n, v)
		c.logger.Info("RemoveValue() done", "value", v, "removed", n)

	case choicePrint:

	case choiceSearch:
		v, err := c.readInt("Value to search for: ")
		if err != nil {
			return err
		}
		if i := c.list.FindFirstIndex(v); i == c.list.Len() {
			fmt.Fprintf(c.out, "%d is not in the list.\n", v)
		} else {
			fmt.Fprintf(c.out, "%d first appears at index %d.\n", v, i)
		}

	case choiceLoad:
		name, ok := c.readLine("File to load from: ")
		if !ok {
			return errInputClosed
		}
		n, err := c.store.Load(ctx, name, c.list)
		if err != nil {
			fmt.Fprintf(c.out, "ERROR: %v\n", err)
			c.logger.Error("Load() failed", "name", name, "error", err)
			return nil
		}
		fmt.Fprintf(c.out, "Loaded %d value(s) from %s.\n", n, name)
		c.logger.Info("Load() done", "name", name, "loaded", n)

	case choiceSave:
		name, ok := c.readLine("File to save to: ")
		if !ok {
			return errInputClosed
		}
		if err := c.store.Save(ctx, name, c.list); err != nil {
			fmt.Fprintf(c.out, "ERROR: %v\n", err)
			c.logger.Error("Save() failed", "name", name, "error", err)
			return nil
		}
		fmt.Fprintf(c.out, "Saved %d value(s) to %s.\n", c.list.Len(), name)
		c.logger.Info("Save() done", "name", name, "saved", c.list.Len())

	case choiceFront:
		if v, err := c.list.Front(); err != nil {
			fmt.Fprintln(c.out, "The list is empty.")
		} else {
			fmt.Fprintf(c.out, "The front value is %d.\n", v)
		}

	case choiceBack:
		if v, err := c.list.Back(); err != nil {
			fmt.Fprintln(c.out, "The list is empty.")
		} else {
			fmt.Fprintf(c.out, "The back value is %d.\n", v)
		}

	case choiceElementAt:
		i, ok, err := c.readIndex("Index to read: ")
		if err != nil || !ok {
			return err
		}
		v, err := c.list.ElementAt(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "The value at index %d is %d.\n", i, v)

	case choiceClear:
		c.list.Clear()
		fmt.Fprintln(c.out, "The list has been cleared.")
		c.logger.Info("Clear() done")
	}
	return nil
}

func (c *Console) printList() {
	fmt.Fprintf(c.out, "%s\n%s\n\n", c.list.Summary(), c.list)
}

// inputErr reports why the input stopped, nil when it simply ended.
func (c *Console) inputErr() error {
	if err := c.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (c *Console) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// readInt prompts until the user enters an integer.
func (c *Console) readInt(prompt string) (int, error) {
	for {
		line, ok := c.readLine(prompt)
		if !ok {
			return 0, errInputClosed
		}
		v, err := strconv.Atoi(line)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(c.out, "%q is not an integer, please try again.\n", line)
	}
}

// readIndex prompts until the user enters an index within the list. ok is
// false when the list is empty and there is no index to ask for.
func (c *Console) readIndex(prompt string) (index int, ok bool, err error) {
	if c.list.IsEmpty() {
		fmt.Fprintln(c.out, "The list is empty, there is no index to choose.")
		return 0, false, nil
	}

	for {
		i, err := c.readInt(fmt.Sprintf("%s[0-%d] ", prompt, c.list.Len()-1))
		if err != nil {
			return 0, false, err
		}
		if i >= 0 && i < c.list.Len() {
			return i, true, nil
		}
		fmt.Fprintf(c.out, "%d is outside the list, please try again.\n", i)
	}
}
