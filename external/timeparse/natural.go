package timeparse

import (
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/tokpost/internal/schedule"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Month-first, matching the examples shown to users ("12/13/2024 8pm").
var absoluteLayouts = []string{
	"1/2/2006 3pm",
	"1/2/2006 3 pm",
	"1/2/2006 3:04pm",
	"1/2/2006 3:04 pm",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type NaturalResolver struct {
	parser *when.Parser
}

func NewNaturalResolver() schedule.Resolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalResolver{parser: w}
}

func (r *NaturalResolver) Resolve(text string, ref time.Time) (ts time.Time, ok bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(ref.Location()), true
	}

	normalized := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if t, ok := parseAbsolute(normalized, ref.Location()); ok {
		return t, true
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("time expression parser panicked", "input", normalized, "panic", rec)
			ts, ok = time.Time{}, false
		}
	}()
	res, err := r.parser.Parse(normalized, ref)
	if err != nil {
		slog.Debug("time expression not understood", "input", normalized, "error", err)
		return time.Time{}, false
	}
	if res == nil {
		return time.Time{}, false
	}
	return res.Time, true
}

func parseAbsolute(text string, loc *time.Location) (time.Time, bool) {
	for _, layout := range absoluteLayouts {
		t, err := time.ParseInLocation(layout, text, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
