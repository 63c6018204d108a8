package models

// ScopeConfig is the operator's capture/visibility policy. A URL is in scope
// iff it matches at least one include pattern and no exclude pattern. Drop
// tells the interception engine to refuse relaying out-of-scope traffic
// instead of merely hiding it.
type ScopeConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
	Drop    bool     `json:"drop"`
}

// DefaultScope matches everything and drops nothing.
func DefaultScope() ScopeConfig {
	return ScopeConfig{Include: []string{"*"}, Exclude: []string{}, Drop: false}
}
