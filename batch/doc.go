// Package batch orchestrates extraction runs over session transcripts.
//
// Discovery lists candidate transcripts and deduplicates them against
// the current index. The Runner dispatches one Pipeline per unit under
// a bounded worker pool; every pipeline serializes its outgoing
// extraction call through a shared Gate, then commits the result to the
// index store. One unit's failure never aborts the others.
package batch
