// Package staging assembles ephemeral filtered copies of bundle trees
// for archiving. Every staged copy is scoped: Stage hands back a Dir
// whose Close removes the whole tree, and copy failures clean up after
// themselves. Cleanup of abandoned directories is handled separately
// by CleanStale.
package staging
