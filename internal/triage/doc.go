// Package triage implements the per-cycle queue triage and deduplication
// engine.
//
// A Cycle fetches one backend queue, classifies each item in fetch order
// against an ordered rule table and a Scoreboard of per-episode leaders, then
// issues one refresh per distinct series and a single bulk delete. All state is
// allocated per cycle and discarded when the cycle ends; nothing survives
// between cycles or crosses instances.
//
// Leader election depends on fetch order. Items are never re-sorted, so the
// first of two equal-scoring competitors is not preferred over the second:
// both are kept.
package triage
