//go:build !nodevice

package main

import "github.com/cwbudde/algo-kick/audio/sink/device"

var deviceOpener = device.Opener
