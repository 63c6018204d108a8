package replay

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/FermatTheorem/NoShitProxy/internal/constants"
	"github.com/FermatTheorem/NoShitProxy/internal/models"
)

// ReplayParam is the query parameter the interception engine watches for to
// pick up an in-browser GET replay.
const ReplayParam = "__nsp"

// Hop-by-hop and framing headers stripped from relayed responses; the relay
// re-frames the body itself.
var hopByHopHeaders = map[string]bool{
	"connection":        true,
	"proxy-connection":  true,
	"keep-alive":        true,
	"te":                true,
	"trailer":           true,
	"transfer-encoding": true,
	"upgrade":           true,
	"content-length":    true,
	"content-encoding":  true,
}

// FilterUpstreamHeaders drops hop-by-hop headers from a registered replay's
// header set before it is stored.
func FilterUpstreamHeaders(headers models.HeaderPairs) models.HeaderPairs {
	out := models.HeaderPairs{}
	for _, pair := range headers {
		if hopByHopHeaders[strings.ToLower(pair[0])] {
			continue
		}
		out = append(out, pair)
	}
	return out
}

// BrowserURL appends the replay token parameter to the original URL, giving
// the engine-side path for bodiless GET replays.
func BrowserURL(rawURL, token string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set(ReplayParam, token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// RelayResult is the upstream response as relayed back to the browser.
type RelayResult struct {
	Status      int
	ContentType string
	Headers     models.HeaderPairs
	Body        []byte
}

// Relay issues the registered request and prepares the upstream response for
// the browser: hop-by-hop headers stripped, Location resolved absolute, and
// a <base href> injected into HTML so relative assets resolve against the
// original origin.
func Relay(ctx context.Context, spec PendingReplay) (*RelayResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, bytes.NewReader(spec.Body))
	if err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	applyHeaders(httpReq, spec.Headers)

	client := &http.Client{
		Timeout: constants.DefaultRepeatTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Detail: err.Error()}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		injected := InjectBaseHref(string(body), BaseHrefForURL(spec.URL))
		body = []byte(injected)
	}

	return &RelayResult{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Headers:     relayHeaders(resp.Header, spec.URL),
		Body:        body,
	}, nil
}

func relayHeaders(headers http.Header, requestURL string) models.HeaderPairs {
	out := models.HeaderPairs{}
	for name, values := range headers {
		lower := strings.ToLower(name)
		if hopByHopHeaders[lower] {
			continue
		}
		for _, value := range values {
			if lower == "location" {
				value = resolveLocation(requestURL, value)
			}
			out = append(out, [2]string{name, value})
		}
	}
	return out
}

func resolveLocation(requestURL, location string) string {
	base, err := url.Parse(requestURL)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(ref).String()
}

var (
	headOpenRe  = regexp.MustCompile(`(?i)<head[^>]*>`)
	headCloseRe = regexp.MustCompile(`(?i)</head>`)
)

// InjectBaseHref adds a <base> tag to an HTML document lacking one.
func InjectBaseHref(html, baseHref string) string {
	if strings.Contains(strings.ToLower(html), "<base") {
		return html
	}

	tag := `<base href="` + baseHref + `">`

	if loc := headOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + tag + html[loc[1]:]
	}
	if loc := headCloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[0]] + tag + html[loc[0]:]
	}
	return tag + html
}

// BaseHrefForURL derives the directory URL relative assets resolve against.
func BaseHrefForURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := parsed.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasSuffix(path, "/") {
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			path = path[:idx+1]
		} else {
			path = "/"
		}
	}
	return parsed.Scheme + "://" + parsed.Host + path
}
