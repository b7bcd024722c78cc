package vision

import "encoding/json"

// ErrorKind classifies why an analysis failed.
type ErrorKind string

const (
	KindConfigMissing        ErrorKind = "config_missing"
	KindHTTPStatus           ErrorKind = "http_status"
	KindProviderAPI          ErrorKind = "provider_api"
	KindInvalidResponseShape ErrorKind = "invalid_response_shape"
	KindNoJSONFound          ErrorKind = "no_json_found"
	KindMalformedJSON        ErrorKind = "malformed_json"
	KindMissingRequiredKeys  ErrorKind = "missing_required_keys"
	KindTimeout              ErrorKind = "timeout"
	KindNetwork              ErrorKind = "network"
	KindUnexpected           ErrorKind = "unexpected"
)

// Result is the outcome of a single rooftop analysis.
//
// A successful result carries both UsableAreaM2 and RecommendedPanels and
// nothing else. A failed result carries Error (plus optional context) and
// never the numeric fields. The JSON encoding is the mapping handed to
// callers: either the two success keys or an "error" key.
type Result struct {
	// Values are kept exactly as the model wrote them; the client does not
	// check that they are numbers.
	UsableAreaM2      json.RawMessage `json:"usable_area_m2,omitempty"`
	RecommendedPanels json.RawMessage `json:"recommended_panels,omitempty"`

	Kind        ErrorKind `json:"-"`
	Error       string    `json:"error,omitempty"`
	Details     string    `json:"details,omitempty"`
	RawResponse string    `json:"raw_response,omitempty"`
	RawContent  string    `json:"raw_content,omitempty"`
}

// OK reports whether the result is a success.
func (r *Result) OK() bool {
	return r != nil && r.Error == ""
}

// Area returns the usable area as a float64 when the model sent a number.
func (r *Result) Area() (float64, bool) {
	return number(r.UsableAreaM2)
}

// Panels returns the recommended panel count as a float64 when the model
// sent a number.
func (r *Result) Panels() (float64, bool) {
	return number(r.RecommendedPanels)
}

// Outcome is a short label for logs and metrics: "success" or the error kind.
func (r *Result) Outcome() string {
	if r.OK() {
		return "success"
	}
	return string(r.Kind)
}

func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func failure(kind ErrorKind, msg string) *Result {
	return &Result{Kind: kind, Error: msg}
}
