package scope

import (
	"regexp"
	"strings"
	"sync"

	"github.com/FermatTheorem/NoShitProxy/internal/models"
)

const wildcardChars = "*?["

// pattern matches a URL either as a case-sensitive substring (no wildcard
// metacharacters present) or as a glob searched anywhere in the URL, so
// "api.example.com/*" hits scheme-prefixed URLs without a leading wildcard.
type pattern struct {
	substring string
	re        *regexp.Regexp
}

func (p pattern) matches(url string) bool {
	if p.re == nil {
		return strings.Contains(url, p.substring)
	}
	return p.re.MatchString(url)
}

func compilePattern(raw string) pattern {
	if !strings.ContainsAny(raw, wildcardChars) {
		return pattern{substring: raw}
	}
	re, err := regexp.Compile(translateGlob(raw))
	if err != nil {
		// A malformed character class degrades to substring matching.
		return pattern{substring: raw}
	}
	return pattern{re: re}
}

// translateGlob converts a shell-style pattern to a search regexp. The match
// is unanchored and, unlike path globs, * crosses every character including
// slashes.
func translateGlob(glob string) string {
	var sb strings.Builder
	sb.WriteString("(?s)")
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '[':
			j := i + 1
			if j < len(glob) && (glob[j] == '!' || glob[j] == '^') {
				j++
			}
			if j < len(glob) && glob[j] == ']' {
				j++
			}
			for j < len(glob) && glob[j] != ']' {
				j++
			}
			if j >= len(glob) {
				sb.WriteString(`\[`)
				continue
			}
			inner := strings.ReplaceAll(glob[i+1:j], `\`, `\\`)
			if strings.HasPrefix(inner, "!") {
				inner = "^" + inner[1:]
			}
			sb.WriteString("[" + inner + "]")
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return sb.String()
}

// Predicate is the compiled in-scope test: at least one include matches and
// no exclude does. An empty include list matches everything.
type Predicate struct {
	include []pattern
	exclude []pattern
}

// Compile builds a Predicate from raw pattern lists. Pure function of its
// inputs; blank patterns are ignored.
func Compile(include, exclude []string) *Predicate {
	p := &Predicate{}
	for _, raw := range include {
		if raw = strings.TrimSpace(raw); raw != "" {
			p.include = append(p.include, compilePattern(raw))
		}
	}
	for _, raw := range exclude {
		if raw = strings.TrimSpace(raw); raw != "" {
			p.exclude = append(p.exclude, compilePattern(raw))
		}
	}
	return p
}

// InScope reports whether url passes the include/exclude test.
func (p *Predicate) InScope(url string) bool {
	if len(p.include) > 0 {
		matched := false
		for _, pat := range p.include {
			if pat.matches(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pat := range p.exclude {
		if pat.matches(url) {
			return false
		}
	}
	return true
}

// Engine holds the process-wide current scope config. Updates are atomic
// swaps; the capture bridge reads it before every ingestion decision.
type Engine struct {
	mu   sync.RWMutex
	cfg  models.ScopeConfig
	pred *Predicate
}

func NewEngine(cfg models.ScopeConfig) *Engine {
	e := &Engine{}
	e.SetConfig(cfg)
	return e
}

// SetConfig normalizes and swaps in a new config. It takes effect for
// subsequently captured flows only; stored rows are never reclassified.
func (e *Engine) SetConfig(cfg models.ScopeConfig) {
	include := trimPatterns(cfg.Include)
	if len(include) == 0 {
		include = []string{"*"}
	}
	exclude := trimPatterns(cfg.Exclude)

	normalized := models.ScopeConfig{Include: include, Exclude: exclude, Drop: cfg.Drop}
	pred := Compile(include, exclude)

	e.mu.Lock()
	e.cfg = normalized
	e.pred = pred
	e.mu.Unlock()
}

func (e *Engine) Config() models.ScopeConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

func (e *Engine) InScope(url string) bool {
	e.mu.RLock()
	pred := e.pred
	e.mu.RUnlock()
	return pred.InScope(url)
}

func (e *Engine) Drop() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Drop
}

func trimPatterns(raw []string) []string {
	out := []string{}
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
