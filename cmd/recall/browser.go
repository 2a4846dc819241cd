package main

import (
	"os/exec"
	"runtime"
)

type browserRunner func(name string, args ...string) error

func defaultBrowserRunner(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func browserCommandForOS(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		return "xdg-open", []string{link}
	}
}

// openInBrowser hands link to the platform opener.
func openInBrowser(runner browserRunner, link string) error {
	name, args := browserCommandForOS(runtime.GOOS, link)
	return runner(name, args...)
}
