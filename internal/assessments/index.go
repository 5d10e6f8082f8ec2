package assessments

import "github.com/KDigitalAi/Assessments/internal/models"

// Index maps source ids to their assessment for the length of one run. It
// is not safe for concurrent use; runs process sources one at a time.
type Index struct {
	bySource map[string]models.Assessment
}

// NewIndex keeps the first assessment seen for each back-reference, so pass
// assessments oldest first.
func NewIndex(existing []models.Assessment) *Index {
	idx := &Index{bySource: make(map[string]models.Assessment, len(existing))}
	for _, a := range existing {
		ref := a.Blueprint.BackRef()
		if ref == "" {
			continue
		}
		if _, ok := idx.bySource[ref]; !ok {
			idx.bySource[ref] = a
		}
	}
	return idx
}

func (i *Index) Lookup(sourceID string) (models.Assessment, bool) {
	a, ok := i.bySource[sourceID]
	return a, ok
}

func (i *Index) Remember(a models.Assessment) {
	ref := a.Blueprint.BackRef()
	if ref == "" {
		ref = a.SourceID
	}
	i.bySource[ref] = a
}

func (i *Index) Len() int { return len(i.bySource) }
