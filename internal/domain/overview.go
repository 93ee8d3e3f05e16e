package domain

// Overview is the dashboard statistics snapshot fetched during bootstrap.
// Unlike list-shaped data it has no sensible empty value, so its fallback is
// a synthetic placeholder dataset flagged via Placeholder.
type Overview struct {
	ActiveAssignments int     `json:"activeAssignments"`
	PendingQuizzes    int     `json:"pendingQuizzes"`
	AverageGrade      float64 `json:"averageGrade"`
	CompletedCourses  int     `json:"completedCourses"`

	// Placeholder marks demo data substituted for an unreachable endpoint.
	// Never set by the server.
	Placeholder bool `json:"-"`
}

// PlaceholderOverview is the demo dataset shown while the statistics endpoint
// is unavailable.
func PlaceholderOverview() Overview {
	return Overview{
		ActiveAssignments: 3,
		PendingQuizzes:    1,
		AverageGrade:      87.5,
		CompletedCourses:  2,
		Placeholder:       true,
	}
}
