package constants

import "time"

// Size bounds for captured bodies and previews.
const (
	MaxPreviewChars  = 8192
	MaxReqBodyStore  = 256 * 1024
	MaxRespBodyStore = 2 * 1024 * 1024
	MaxFormatBytes   = 256 * 1024 // pretty-print JSON only up to this size
)

// Listing pagination bounds.
const (
	DefaultListLimit = 200
	MaxListLimit     = 2000
)

// Replay executor bounds.
const (
	DefaultRepeatTimeout = 20 * time.Second
	MinRepeatTimeout     = 1 * time.Second
	MaxRepeatTimeout     = 120 * time.Second
	ReplayTokenTTL       = 60 * time.Second
	MaxPendingReplays    = 256
	RepeatBodyB64Limit   = 64 * 1024
)

// GlobalReplayOpenLimit caps browser-open token issuance per minute.
const GlobalReplayOpenLimit = 60
