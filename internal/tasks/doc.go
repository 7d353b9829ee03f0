// Package tasks implements the ingestion controller.
//
// The core abstraction is [Harvester], a single-threaded loop over
// increasing listing pages. Each cycle fetches one page, runs every item
// through pre-filters, extraction, and the dedup gates, then waits out the
// remainder of the refresh interval before the next page.
//
// The loop is an explicit finite-state machine (fetching → processing →
// paused → fetching). Reaching the processing quota enters the paused
// state: a fixed cool-down, counter reset, and a restart from page 1.
// Reaching the duplicate-streak limit is the only normal termination.
//
// All session state (counters, recent users, processed ids, the bounded
// history buffer) lives on the Harvester; nothing is ambient or shared.
package tasks
