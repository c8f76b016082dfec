package dto

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetricResponse wraps a single analytics figure. Value is null when there
// is nothing to aggregate.
type MetricResponse struct {
	Metric string      `json:"metric"`
	Value  interface{} `json:"value"`
}
