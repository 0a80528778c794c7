// Package audio plays the optional chime when the island opens.
// It uses the beep library to play WAV, OGG, and MP3 files, and
// synthesizes a short two-note chime when no file is configured.
package audio
