package bridge

import (
	"encoding/base64"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/FermatTheorem/NoShitProxy/internal/bus"
	"github.com/FermatTheorem/NoShitProxy/internal/constants"
	"github.com/FermatTheorem/NoShitProxy/internal/models"
	"github.com/FermatTheorem/NoShitProxy/internal/scope"
	"github.com/FermatTheorem/NoShitProxy/internal/store"
	"github.com/FermatTheorem/NoShitProxy/internal/utils"
)

// Bridge is the sole path by which flows enter the store. The interception
// engine reports each completed (or terminally failed) exchange exactly
// once; the bridge applies scope, bounds the stored payloads, appends, and
// publishes. Safe for concurrent calls: the append+publish pair runs under
// one lock, so the live stream follows store-append order.
type Bridge struct {
	store *store.FlowStore
	scope *scope.Engine
	bus   *bus.Bus

	mu sync.Mutex // serializes append+publish
}

func New(flowStore *store.FlowStore, scopeEngine *scope.Engine, eventBus *bus.Bus) *Bridge {
	return &Bridge{store: flowStore, scope: scopeEngine, bus: eventBus}
}

// Ingest processes one reported exchange. Out-of-scope traffic with drop
// enabled is rejected outright — the verdict tells the engine to refuse
// relaying; nothing is stored or published. A storage failure loses that
// flow (logged, surfaced) but never takes the bridge down.
func (b *Bridge) Ingest(raw models.IngestFlow) (models.IngestResult, error) {
	flow := normalize(raw)

	inScope := b.scope.InScope(flow.URL)
	if !inScope && b.scope.Drop() {
		return models.IngestResult{InScope: false, Stored: false}, nil
	}

	reqBody := decodeCapped(raw.ReqBodyB64, constants.MaxReqBodyStore)
	respBody := decodeCapped(raw.RespBodyB64, constants.MaxRespBodyStore)

	if reqBody != nil {
		encoded := base64.StdEncoding.EncodeToString(reqBody)
		flow.ReqBodyB64 = &encoded
	}
	if flow.ReqSize == 0 && reqBody != nil {
		flow.ReqSize = int64(len(reqBody))
	}
	if flow.RespSize == 0 && respBody != nil {
		flow.RespSize = int64(len(respBody))
	}

	flow.ReqPreview = raw.ReqPreview
	if flow.ReqPreview == nil {
		flow.ReqPreview = previewText(reqBody, flow.ReqHeaders.Get("content-type"))
	}
	flow.RespPreview = raw.RespPreview
	if flow.RespPreview == nil {
		flow.RespPreview = previewText(respBody, flow.RespHeaders.Get("content-type"))
	}

	var respBodyB64 *string
	if respBody != nil {
		encoded := base64.StdEncoding.EncodeToString(respBody)
		respBodyB64 = &encoded
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	seq, err := b.store.Append(&flow, respBodyB64, bodyText(respBody))
	if err != nil {
		log.Printf("Failed to store flow %s: %v", flow.ID, err)
		return models.IngestResult{InScope: inScope, Stored: false}, err
	}
	flow.Seq = seq

	payload, err := bus.EncodeFlowEvent(flow.Summary())
	if err != nil {
		log.Printf("Failed to encode flow event %s: %v", flow.ID, err)
	} else {
		b.bus.Publish(payload)
	}

	return models.IngestResult{InScope: inScope, Stored: true, Seq: seq}, nil
}

func normalize(raw models.IngestFlow) models.Flow {
	flow := models.Flow{
		ID:          raw.ID,
		TS:          raw.TS,
		Method:      strings.ToUpper(strings.TrimSpace(raw.Method)),
		URL:         raw.URL,
		Host:        raw.Host,
		Path:        raw.Path,
		Status:      raw.Status,
		Duration:    raw.Duration,
		ReqHeaders:  raw.ReqHeaders,
		RespHeaders: raw.RespHeaders,
		ReqSize:     raw.ReqSize,
		RespSize:    raw.RespSize,
	}
	if flow.ID == "" {
		flow.ID = utils.GenerateUUID()
	}
	if flow.Method == "" {
		flow.Method = "GET"
	}
	if flow.TS == 0 {
		flow.TS = float64(time.Now().UnixNano()) / 1e9
	}
	if flow.ReqHeaders == nil {
		flow.ReqHeaders = models.HeaderPairs{}
	}
	if flow.RespHeaders == nil {
		flow.RespHeaders = models.HeaderPairs{}
	}
	if flow.Host == nil || flow.Path == nil {
		if parsed, err := url.Parse(flow.URL); err == nil {
			if flow.Host == nil && parsed.Host != "" {
				host := parsed.Host
				flow.Host = &host
			}
			if flow.Path == nil && parsed.Path != "" {
				path := parsed.Path
				flow.Path = &path
			}
		}
	}
	return flow
}

// decodeCapped decodes a base64 payload, discarding it entirely when it
// exceeds the cap or fails to decode.
func decodeCapped(b64 *string, capBytes int) []byte {
	if b64 == nil || *b64 == "" {
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(*b64)
	if err != nil || len(decoded) == 0 || len(decoded) > capBytes {
		return nil
	}
	return decoded
}
