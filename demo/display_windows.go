//go:build windows

package demo

func clearCommand() (string, []string) {
	return "cmd", []string{"/c", "cls"}
}
