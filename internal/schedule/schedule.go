// Package schedule turns a user's publish-time answer into a delay the
// uploader understands and decides whether that delay is allowed.
package schedule

import (
	"strings"
	"time"
)

const (
	DefaultMinLead    = 20 * time.Minute
	DefaultMaxHorizon = 240 * time.Hour

	optOutAnswer = "no"
)

// Resolver parses free-form time expressions such as "tomorrow 3pm".
// Implementations must interpret relative phrases against ref and must
// report unrecognized input with ok=false rather than panicking.
type Resolver interface {
	Resolve(text string, ref time.Time) (ts time.Time, ok bool)
}

type Verdict int

const (
	VerdictImmediate Verdict = iota
	VerdictAccepted
	VerdictTooSoon
	VerdictTooFar
)

func (v Verdict) String() string {
	switch v {
	case VerdictImmediate:
		return "immediate"
	case VerdictAccepted:
		return "accepted"
	case VerdictTooSoon:
		return "too_soon"
	case VerdictTooFar:
		return "too_far"
	default:
		return "unknown"
	}
}

type Candidate struct {
	OptOut         bool
	ParseSucceeded bool
	Timestamp      time.Time
	SecondsFromNow int64
}

func OptOutCandidate() Candidate {
	return Candidate{OptOut: true}
}

func NewCandidate(ts, ref time.Time) Candidate {
	return Candidate{
		ParseSucceeded: true,
		Timestamp:      ts,
		SecondsFromNow: delaySeconds(ts, ref),
	}
}

// IsOptOut reports whether the answer asks for an immediate upload.
func IsOptOut(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), optOutAnswer)
}

type Validator struct {
	MinLead    time.Duration
	MaxHorizon time.Duration
}

func NewValidator(minLead, maxHorizon time.Duration) Validator {
	if minLead <= 0 {
		minLead = DefaultMinLead
	}
	if maxHorizon <= 0 {
		maxHorizon = DefaultMaxHorizon
	}
	return Validator{MinLead: minLead, MaxHorizon: maxHorizon}
}

func (v Validator) Validate(c Candidate, ref time.Time) (int64, Verdict) {
	if c.OptOut {
		return 0, VerdictImmediate
	}
	delay := delaySeconds(c.Timestamp, ref)
	switch {
	case delay < int64(v.MinLead/time.Second):
		return delay, VerdictTooSoon
	case delay > int64(v.MaxHorizon/time.Second):
		return delay, VerdictTooFar
	default:
		return delay, VerdictAccepted
	}
}

// delaySeconds truncates toward zero.
func delaySeconds(ts, ref time.Time) int64 {
	return int64(ts.Sub(ref) / time.Second)
}
