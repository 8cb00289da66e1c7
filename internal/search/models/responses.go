package models

// SearchSuccess is the 200 response for a completed search.
type SearchSuccess struct {
	OK            bool   `json:"ok"`
	TransactionID string `json:"transactionId"`
	RecordsFound  int    `json:"recordsFound"`
	Data          any    `json:"data"`
}

// SearchUpstreamError is the 200 response for a well-formed negative
// outcome from the upstream service. The code and message are passed
// through verbatim.
type SearchUpstreamError struct {
	OK           bool   `json:"ok"`
	TLOError     bool   `json:"tloError"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// SearchFailure is the error response shape for local rejections and
// upstream faults. RawStart is only populated for parse failures.
type SearchFailure struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	RawStart string `json:"rawStart,omitempty"`
}
