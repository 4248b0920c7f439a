// Package viz renders the attractor's force output for a terminal:
// a live bubbletea monitor fed by the sampling loop, and asciigraph
// plots of recorded force traces.
package viz
