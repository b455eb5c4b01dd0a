package verify

// Stage identifies a coarse phase of the verification pipeline.
type Stage string

// Pipeline stages, in the order they occur.
const (
	// StageConverting covers PDF page rasterization.
	StageConverting Stage = "converting"

	// StageRecognizing covers text recognition over the page images.
	StageRecognizing Stage = "recognizing"
)

// Progress is a single progress update emitted during verification.
type Progress struct {
	// Stage is the current pipeline phase.
	Stage Stage `json:"stage"`

	// Percent is the overall pipeline progress, 0-100, monotonically
	// non-decreasing across updates.
	Percent int `json:"percent"`

	// Message is a human-readable status string.
	Message string `json:"message"`
}

// ProgressFunc receives progress updates during a verification call. It is
// invoked zero or more times; the final update is not guaranteed to report
// 100 - completion is signaled by Verify returning.
type ProgressFunc func(Progress)

// progressReporter rescales per-phase progress into a single 0-100
// sequence and enforces the converting -> recognizing phase ordering by
// clamping: an update can never report a lower percentage than the one
// before it.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func (p *progressReporter) report(stage Stage, percent int, message string) {
	if p.fn == nil {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	if percent > 100 {
		percent = 100
	}
	p.last = percent
	p.fn(Progress{Stage: stage, Percent: percent, Message: message})
}
