package main

import (
	"os"
	"os/signal"
	"syscall"

	mydups "github.com/mattkeenan/mydups/pkg"
)

// setupSignalHandler returns a channel closed on SIGINT or SIGTERM.
// The walks poll it between files and stop with mydups.ErrInterrupted.
func setupSignalHandler() <-chan struct{} {
	shutdown := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		mydups.VerboseLog(1, "received signal %v, stopping", sig)
		close(shutdown)
		// A second signal terminates immediately.
		signal.Stop(sigChan)
	}()

	return shutdown
}
