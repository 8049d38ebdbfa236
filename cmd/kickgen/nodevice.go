//go:build nodevice

package main

import "github.com/cwbudde/algo-kick/audio/sink"

// Built without audio device support; playback falls back to temp files.
var deviceOpener sink.DeviceOpener
