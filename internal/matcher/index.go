package matcher

import (
	"dataset-reconciler/internal/models"
)

// KeyIndex is a read-only lookup of normalized records by document number.
// When a key repeats, the last record wins and the earlier ones are counted
// as shadowed.
type KeyIndex struct {
	byKey    map[string]*models.NormalizedRecord
	shadowed map[string]int
	size     int
}

// NewKeyIndex builds an index over records
func NewKeyIndex(records []models.NormalizedRecord) *KeyIndex {
	idx := &KeyIndex{
		byKey:    make(map[string]*models.NormalizedRecord, len(records)),
		shadowed: make(map[string]int),
		size:     len(records),
	}
	for i := range records {
		rec := &records[i]
		if _, exists := idx.byKey[rec.DocNo]; exists {
			idx.shadowed[rec.DocNo]++
		}
		idx.byKey[rec.DocNo] = rec
	}
	return idx
}

// Get returns the record for key, if any
func (idx *KeyIndex) Get(key string) (*models.NormalizedRecord, bool) {
	rec, ok := idx.byKey[key]
	return rec, ok
}

// Has reports whether key is present
func (idx *KeyIndex) Has(key string) bool {
	_, ok := idx.byKey[key]
	return ok
}

// GetIndexStats returns statistics about the index
func (idx *KeyIndex) GetIndexStats() IndexStats {
	shadowed := 0
	for _, n := range idx.shadowed {
		shadowed += n
	}
	return IndexStats{
		TotalRecords:    idx.size,
		UniqueKeys:      len(idx.byKey),
		DuplicateKeys:   len(idx.shadowed),
		ShadowedRecords: shadowed,
	}
}

// IndexStats provides statistics about a key index
type IndexStats struct {
	TotalRecords    int `json:"totalRecords"`
	UniqueKeys      int `json:"uniqueKeys"`
	DuplicateKeys   int `json:"duplicateKeys"`
	ShadowedRecords int `json:"shadowedRecords"`
}
