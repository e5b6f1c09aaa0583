package demo

import (
	"io"
	"os"
	"os/exec"
)

// Display is the part of the console that depends on the platform.
type Display interface {
	ClearDisplay()
}

// NopDisplay never clears anything. It is used when the console is not
// attached to a terminal.
type NopDisplay struct{}

func (NopDisplay) ClearDisplay() {}

// Terminal clears the screen by running the platform's clear command.
type Terminal struct {
	Out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{Out: os.Stdout}
}

func (t *Terminal) ClearDisplay() {
	name, args := clearCommand()
	cmd := exec.Command(name, args...)
	cmd.Stdout = t.Out
	// Failing to clear only leaves old output on screen.
	_ = cmd.Run()
}
