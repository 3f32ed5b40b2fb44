package main

import (
	"runtime"

	"github.com/tuboc/chip8/cmd"
)

// SDL must run on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd.Execute()
}
