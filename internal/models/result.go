package models

// Recommendation is one recommended assessment as returned to callers.
// Similarity scores are internal and deliberately not exposed.
type Recommendation struct {
	AssessmentName string `json:"assessment_name"`
	AssessmentURL  string `json:"assessment_url"`
	TestType       string `json:"test_type"`
	Description    string `json:"description,omitempty"`
}

// RecommendResponse is the response for a recommendation request.
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Query           string           `json:"query"`
	Count           int              `json:"count"`
}

// NewRecommendation builds a Recommendation from an assessment.
func NewRecommendation(a Assessment) Recommendation {
	return Recommendation{
		AssessmentName: a.Name,
		AssessmentURL:  a.URL,
		TestType:       a.Type,
		Description:    a.Description,
	}
}
