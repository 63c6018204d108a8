package replay

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/FermatTheorem/NoShitProxy/internal/constants"
	"github.com/FermatTheorem/NoShitProxy/internal/models"
)

// Request headers the executor never forwards; the transport owns these.
var dropRequestHeaders = map[string]bool{
	"connection":        true,
	"proxy-connection":  true,
	"keep-alive":        true,
	"te":                true,
	"trailer":           true,
	"transfer-encoding": true,
	"upgrade":           true,
	"content-length":    true,
}

// ValidationError means the replay input was malformed before any network
// I/O was attempted.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// NetworkError means the replayed request itself failed: the target was
// unreachable, timed out, or broke mid-response. The failure belongs to the
// replayed request, not this tool.
type NetworkError struct {
	Detail string
}

func (e *NetworkError) Error() string {
	return e.Detail
}

// ParseHeadersText parses a raw header block line by line. Lines without a
// colon are skipped silently; hop-by-hop headers are dropped.
func ParseHeadersText(text string) models.HeaderPairs {
	out := models.HeaderPairs{}
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		name, value, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" || dropRequestHeaders[strings.ToLower(name)] {
			continue
		}
		out = append(out, [2]string{name, strings.TrimSpace(value)})
	}
	return out
}

// Repeat re-issues a captured or hand-authored request and returns a
// comparable result. Redirects are not followed; no store or scope lock is
// held while the round trip is outstanding.
func Repeat(ctx context.Context, req models.RepeatRequest) (*models.RepeatResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return nil, &ValidationError{Detail: "method is required"}
	}
	target := strings.TrimSpace(req.URL)
	if err := validateTargetURL(target); err != nil {
		return nil, err
	}

	timeout := constants.DefaultRepeatTimeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout * float64(time.Second))
		if timeout < constants.MinRepeatTimeout {
			timeout = constants.MinRepeatTimeout
		}
		if timeout > constants.MaxRepeatTimeout {
			timeout = constants.MaxRepeatTimeout
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, strings.NewReader(req.Body))
	if err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	applyHeaders(httpReq, ParseHeadersText(req.Headers))

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Detail: err.Error()}
	}

	first64k := raw
	if len(first64k) > constants.RepeatBodyB64Limit {
		first64k = first64k[:constants.RepeatBodyB64Limit]
	}

	return &models.RepeatResponse{
		Status:          resp.StatusCode,
		Headers:         headersToText(resp.Header),
		Preview:         previewString(raw, constants.MaxPreviewChars),
		BodyFirst64KB64: base64.StdEncoding.EncodeToString(first64k),
		Bytes:           len(raw),
	}, nil
}

func validateTargetURL(target string) error {
	if target == "" {
		return &ValidationError{Detail: "url is required"}
	}
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return &ValidationError{Detail: "url must start with http:// or https://"}
	}
	return nil
}

func applyHeaders(req *http.Request, headers models.HeaderPairs) {
	for _, pair := range headers {
		if strings.EqualFold(pair[0], "host") {
			req.Host = pair[1]
			continue
		}
		req.Header.Add(pair[0], pair[1])
	}
}

func headersToText(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{}
	for _, name := range names {
		for _, value := range headers[name] {
			lines = append(lines, name+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

func previewString(data []byte, limit int) string {
	if len(data) > limit {
		data = data[:limit]
	}
	return strings.ToValidUTF8(string(data), "�")
}
