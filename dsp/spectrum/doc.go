// Package spectrum provides spectrum-domain helpers for kick analysis.
//
// The package does not implement an FFT. It operates on complex bins
// produced by an FFT backend and adds peak picking, spectral centroid and a
// single-bin Goertzel detector.
package spectrum
