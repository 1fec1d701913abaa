package reads

import "github.com/inodb/vibe-region/internal/genome"

// Index answers overlap queries over a fixed set of records.
type Index = genome.Index[*Record]

// BuildIndex creates an index over records. Empty records are ignored.
func BuildIndex(records []*Record) *Index {
	return genome.NewIndex(records)
}
