//go:build tinygo && baremetal

package main

import (
	"keyvisor/app"
	"keyvisor/hal"
)

func main() {
	app.Run(hal.New())
}
