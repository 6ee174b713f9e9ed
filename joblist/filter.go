package joblist

import "strings"

// PageSize is the number of cards on one page.
const PageSize = 15

// Filter returns the jobs whose company or title contains query
// (case-insensitive) and, when source is non-empty, whose AppliedFrom equals
// it exactly. Input order is preserved and the input slice is not modified.
func Filter(jobs []Job, query string, source Source) []Job {
	q := strings.ToLower(query)
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if !matchesQuery(job, q) {
			continue
		}
		if source != "" && job.AppliedFrom != source {
			continue
		}
		out = append(out, job)
	}
	return out
}

// matchesQuery expects q already lower-cased.
func matchesQuery(job Job, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(job.Company), q) ||
		strings.Contains(strings.ToLower(job.JobTitle), q)
}

// Paginate returns page (1-based) of jobs using the given page size.
// Pages past the end, and pages below 1, are empty; no clamping happens.
// A size below 1 falls back to PageSize.
func Paginate(jobs []Job, page, size int) []Job {
	if size < 1 {
		size = PageSize
	}
	if page < 1 || len(jobs) == 0 {
		return []Job{}
	}
	// compare page indexes before multiplying so huge pages cannot overflow
	if page-1 > (len(jobs)-1)/size {
		return []Job{}
	}
	start := (page - 1) * size
	end := len(jobs)
	if size < end-start {
		end = start + size
	}
	return jobs[start:end]
}

// PageCount is ceil(n/size), the number of page buttons to render.
func PageCount(n, size int) int {
	if size < 1 {
		size = PageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
