// Package committer decides when a step should checkpoint its progress.
package committer

type Committer interface {
	// RecordProcessed adds count items to the progress since the last checkpoint.
	RecordProcessed(count int)
	// Due reports whether a checkpoint should be taken now.
	Due() bool
	// Committed marks a checkpoint as taken.
	Committed()
}
