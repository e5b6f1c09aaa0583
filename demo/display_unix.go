//go:build !windows

package demo

func clearCommand() (string, []string) {
	return "clear", nil
}
