// Package display hosts the island in a GTK4 layer-shell window anchored
// to the top edge of the target monitor. It turns GTK pointer events into
// pointer samples, applies hit regions by resizing the surface and draws
// the activity panel.
package display
