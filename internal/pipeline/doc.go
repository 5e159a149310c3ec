// Package pipeline orchestrates bundle builds: manifest rewrite in the
// source tree, filtered staging copy, archive production, receipt
// recording. Bundles are processed strictly sequentially and
// independently — one failure never rolls back or short-circuits the
// others.
package pipeline
