// Package daemon wires the island together: configuration, the interaction
// machine, the host window, the activity panel and its reveal animation,
// the audio cue and configuration hot-reload.
package daemon
