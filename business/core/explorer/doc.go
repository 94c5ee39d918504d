/*
Package explorer implements the block explorer of the dashboard.

The explorer is built from three parts that share one snapshot of the chain.

- Cache holds the latest ordered sequence of blocks read from the backend. A
refresh replaces the whole snapshot or nothing at all.

- Modal shows the full detail of one block and moves to the adjacent block
with a directional entrance animation. It is either closed or open on an
index that is valid for the snapshot.

- Grid renders a horizontally scrollable strip of summary cards and keeps the
visibility of its two scroll controls.

Rendering is done by pure functions that produce view models, leaving the
display surface (HTML, terminal) to the caller.
*/
package explorer
