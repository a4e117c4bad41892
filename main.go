/*
Example application that drives the engine package: opens a window and
clears it through the WebGPU renderer.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prism-engine/prism/testbed"
)

func main() {
	demo := testbed.NewDemo()

	if err := demo.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = demo.Shutdown()
		os.Exit(0)
	}()

	if err := demo.Run(); err != nil {
		panic(err)
	}

	if err := demo.Shutdown(); err != nil {
		panic(err)
	}
}
