package models

// RepeatRequest is a request authored (or edited) by the operator. Headers
// is a raw text block, one "Name: value" per line; malformed lines are
// skipped during parsing.
type RepeatRequest struct {
	Method  string  `json:"method"`
	URL     string  `json:"url" binding:"required"`
	Headers string  `json:"headers"`
	Body    string  `json:"body"`
	Timeout float64 `json:"timeout"` // seconds, 0 means the default
}

// RepeatResponse is the comparable result of a replayed request.
type RepeatResponse struct {
	Status          int    `json:"status"`
	Headers         string `json:"headers"`
	Preview         string `json:"preview"`
	BodyFirst64KB64 string `json:"body_first64k_b64"`
	Bytes           int    `json:"bytes"`
}

// ReplayOpenRequest registers a one-time browser-open target. The body may
// arrive as text or base64; base64 wins when both are set.
type ReplayOpenRequest struct {
	Method  string      `json:"method"`
	URL     string      `json:"url" binding:"required"`
	Headers HeaderPairs `json:"headers"`
	Body    string      `json:"body"`
	BodyB64 *string     `json:"body_b64"`
}
