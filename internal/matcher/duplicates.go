package matcher

import (
	"dataset-reconciler/internal/models"
)

// DuplicateGroup lists the rows of one dataset that share a document number
type DuplicateGroup struct {
	DocNo string `json:"docNo"`
	// RowIndexes are in dataset order
	RowIndexes []int `json:"rowIndexes"`
	// KeptRowIndex is the row that takes part in the join
	KeptRowIndex int `json:"keptRowIndex"`
}

// DuplicateDetectionResult lists duplicate keys for one dataset
type DuplicateDetectionResult struct {
	Dataset string           `json:"dataset"`
	Groups  []DuplicateGroup `json:"groups"`
}

// HasDuplicates reports whether any key repeats
func (r *DuplicateDetectionResult) HasDuplicates() bool {
	return len(r.Groups) > 0
}

// ShadowedCount returns the number of rows hidden by a later row with the same key
func (r *DuplicateDetectionResult) ShadowedCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.RowIndexes) - 1
	}
	return n
}

// DetectDuplicates reports document numbers that appear more than once in
// records. Groups are ordered by the first occurrence of each key. Nothing is
// removed; the last row of each group is the one the join sees.
func DetectDuplicates(dataset string, records []models.NormalizedRecord) *DuplicateDetectionResult {
	positions := make(map[string][]int, len(records))
	var order []string

	for _, rec := range records {
		if _, seen := positions[rec.DocNo]; !seen {
			order = append(order, rec.DocNo)
		}
		positions[rec.DocNo] = append(positions[rec.DocNo], rec.RowIndex)
	}

	result := &DuplicateDetectionResult{Dataset: dataset, Groups: []DuplicateGroup{}}
	for _, key := range order {
		rows := positions[key]
		if len(rows) < 2 {
			continue
		}
		result.Groups = append(result.Groups, DuplicateGroup{
			DocNo:        key,
			RowIndexes:   rows,
			KeptRowIndex: rows[len(rows)-1],
		})
	}
	return result
}
