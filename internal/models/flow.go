package models

import "strings"

// HeaderPairs is an ordered list of [name, value] pairs. Names keep their
// original casing on storage and serialize as JSON arrays, matching the
// proxy engine's wire format.
type HeaderPairs [][2]string

// Get returns the first value for name, matched case-insensitively.
func (h HeaderPairs) Get(name string) string {
	for _, pair := range h {
		if strings.EqualFold(pair[0], name) {
			return pair[1]
		}
	}
	return ""
}

// FlowSummary is the listing/streaming view of a captured flow.
type FlowSummary struct {
	Seq      int64    `json:"seq"`
	ID       string   `json:"id"`
	TS       float64  `json:"ts"`
	Method   string   `json:"method"`
	URL      string   `json:"url"`
	Host     *string  `json:"host"`
	Path     *string  `json:"path"`
	Status   *int     `json:"status"`
	Duration *float64 `json:"duration"`
	ReqSize  int64    `json:"req_size"`
	RespSize int64    `json:"resp_size"`
}

// Flow is the full detail record, previews included. The complete response
// body is not part of this struct; it is fetched lazily by id.
type Flow struct {
	Seq         int64       `json:"seq"`
	ID          string      `json:"id"`
	TS          float64     `json:"ts"`
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	Host        *string     `json:"host"`
	Path        *string     `json:"path"`
	Status      *int        `json:"status"`
	Duration    *float64    `json:"duration"`
	ReqHeaders  HeaderPairs `json:"req_headers"`
	RespHeaders HeaderPairs `json:"resp_headers"`
	ReqSize     int64       `json:"req_size"`
	RespSize    int64       `json:"resp_size"`
	ReqBodyB64  *string     `json:"req_body_b64"`
	ReqPreview  *string     `json:"req_preview"`
	RespPreview *string     `json:"resp_preview"`
}

// Summary projects the listing view out of a full record.
func (f *Flow) Summary() FlowSummary {
	return FlowSummary{
		Seq:      f.Seq,
		ID:       f.ID,
		TS:       f.TS,
		Method:   f.Method,
		URL:      f.URL,
		Host:     f.Host,
		Path:     f.Path,
		Status:   f.Status,
		Duration: f.Duration,
		ReqSize:  f.ReqSize,
		RespSize: f.RespSize,
	}
}

// IngestFlow is what the interception engine posts for one completed (or
// terminally failed) exchange. Previews are optional; the bridge derives
// them from the body payloads when absent.
type IngestFlow struct {
	ID          string      `json:"id"`
	TS          float64     `json:"ts"`
	Method      string      `json:"method"`
	URL         string      `json:"url" binding:"required"`
	Host        *string     `json:"host"`
	Path        *string     `json:"path"`
	Status      *int        `json:"status"`
	Duration    *float64    `json:"duration"`
	ReqHeaders  HeaderPairs `json:"req_headers"`
	RespHeaders HeaderPairs `json:"resp_headers"`
	ReqSize     int64       `json:"req_size"`
	RespSize    int64       `json:"resp_size"`
	ReqBodyB64  *string     `json:"req_body_b64"`
	RespBodyB64 *string     `json:"resp_body_b64"`
	ReqPreview  *string     `json:"req_preview"`
	RespPreview *string     `json:"resp_preview"`
}

// IngestResult is the bridge's verdict back to the engine. Stored is false
// either when the flow was rejected (out of scope with drop enabled) or when
// a storage failure lost it.
type IngestResult struct {
	InScope bool  `json:"in_scope"`
	Stored  bool  `json:"stored"`
	Seq     int64 `json:"seq,omitempty"`
}

// FlowQuery is a paginated, sorted, ad-hoc-filtered listing request. Where
// is operator text and goes through the filter guard; Extra carries
// server-built clauses (scope, static assets) that are ANDed in untouched.
type FlowQuery struct {
	Limit  int
	Offset int
	Where  string
	Extra  string
	Sort   string // num, method, url, status, size, time
	Order  string // asc, desc
}
