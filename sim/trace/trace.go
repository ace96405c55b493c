package trace

// TraceLevel controls the verbosity of attempt tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelAttempts captures every augmentation attempt.
	TraceLevelAttempts TraceLevel = "attempts"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelAttempts: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// AugmentationTrace collects attempt records during an augmentation run.
type AugmentationTrace struct {
	Config   TraceConfig
	Attempts []AttemptRecord
}

// NewAugmentationTrace creates an AugmentationTrace ready for recording.
func NewAugmentationTrace(config TraceConfig) *AugmentationTrace {
	return &AugmentationTrace{
		Config:   config,
		Attempts: make([]AttemptRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on nil.
func (at *AugmentationTrace) Enabled() bool {
	return at != nil && at.Config.Level == TraceLevelAttempts
}

// RecordAttempt appends an attempt record. No-op when tracing is disabled.
func (at *AugmentationTrace) RecordAttempt(record AttemptRecord) {
	if !at.Enabled() {
		return
	}
	at.Attempts = append(at.Attempts, record)
}
