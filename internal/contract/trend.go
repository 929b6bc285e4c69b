package contract

import "time"

// TrendPoint is one sample of a user's score history, emitted after each completed analysis.
type TrendPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	ATSScore       float64   `json:"atsScore"`
	Readability    float64   `json:"readability"`
	KeywordDensity float64   `json:"keywordDensity"`
}
