package treatments

import (
	"fmt"
	"strings"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/status"
)

// BucketAll disables status filtering.
const BucketAll = "all"

// Filter selects treatments for the dashboard.
type Filter struct {
	Bucket string
	Search string
}

// ParseFilter validates the query parameters of the treatments listing. An
// empty bucket means all.
func ParseFilter(bucket, search string) (Filter, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" || status.Canonical(bucket) == BucketAll {
		return Filter{Bucket: BucketAll, Search: strings.TrimSpace(search)}, nil
	}
	b, ok := status.ParsePlanBucket(bucket)
	if !ok {
		return Filter{}, apperr.Invalid(fmt.Sprintf("Bộ lọc trạng thái không hợp lệ: %s", bucket))
	}
	return Filter{Bucket: string(b), Search: strings.TrimSpace(search)}, nil
}

// Diagnostic names a treatment whose status matches none of the filter
// buckets. Such treatments appear only under "all".
type Diagnostic struct {
	TreatmentID string `json:"treatmentId"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// TreatmentList is the filtered dashboard.
type TreatmentList struct {
	Treatments  []Treatment  `json:"treatments"`
	Total       int          `json:"total"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Apply filters treatments by bucket and search term and reports every
// unbucketed treatment, whether or not it survived the filter.
func (f Filter) Apply(treatments []Treatment) TreatmentList {
	list := TreatmentList{
		Treatments:  []Treatment{},
		Total:       len(treatments),
		Diagnostics: Unbucketed(treatments),
	}
	term := status.Canonical(f.Search)
	for _, t := range treatments {
		if !f.matchesBucket(t) || !matchesSearch(t, term) {
			continue
		}
		list.Treatments = append(list.Treatments, t)
	}
	return list
}

func (f Filter) matchesBucket(t Treatment) bool {
	if f.Bucket == "" || f.Bucket == BucketAll {
		return true
	}
	b, ok := status.ParsePlanBucket(t.Status)
	return ok && string(b) == f.Bucket
}

func matchesSearch(t Treatment, term string) bool {
	if term == "" {
		return true
	}
	for _, field := range []string{t.Type, t.Doctor, t.ID} {
		if strings.Contains(status.Canonical(field), term) {
			return true
		}
	}
	return false
}

// Unbucketed lists treatments hidden from every specific filter.
func Unbucketed(treatments []Treatment) []Diagnostic {
	out := []Diagnostic{}
	for _, t := range treatments {
		if _, ok := status.ParsePlanBucket(t.Status); ok {
			continue
		}
		out = append(out, Diagnostic{
			TreatmentID: t.ID,
			Status:      t.Status,
			Message:     fmt.Sprintf("treatment status %q matches no filter; shown only under %q", t.Status, BucketAll),
		})
	}
	return out
}
