// Package kick synthesizes a single percussive kick drum hit.
//
// A kick is rendered offline from a handful of perceptual parameters: a
// pitch sweep integrated into an oscillator phase, an optional blend of
// second and third harmonics, an exponential body envelope, a short 6 kHz
// click transient, tanh drive, a linear fade-out and peak normalization to
// 0.95. [Synthesize] is a pure function: it keeps no state between calls,
// allocates a fresh buffer on every call and is safe for concurrent use.
//
// Out-of-range values are clamped or gated rather than rejected, so any
// finite parameter set produces some sound. Only a non-positive sample rate
// or a non-finite field is reported as an error; see [Params.Validate].
package kick
