package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foxseedlab/tokpost/internal/publisher"
)

const maxDetailRunes = 300

type Request struct {
	Username     string
	FilePath     string
	Title        string
	DelaySeconds int64
}

type Result struct {
	OK     bool
	Detail string
}

type Invoker struct {
	publisher  publisher.Publisher
	visibility publisher.Visibility
}

func NewInvoker(p publisher.Publisher, visibility publisher.Visibility) *Invoker {
	return &Invoker{publisher: p, visibility: visibility}
}

// Invoke never panics; every failure, including a panicking publisher,
// comes back as a Result with OK=false.
func (i *Invoker) Invoke(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("publisher panicked", "panic", r, "account", req.Username)
			res = Result{OK: false, Detail: boundDetail(fmt.Sprintf("publisher panicked: %v", r))}
		}
	}()

	slog.Info("invoking publisher", "account", req.Username, "file_path", req.FilePath, "delay_seconds", req.DelaySeconds)
	err := i.publisher.Publish(ctx, publisher.PublishInput{
		AccountName:  req.Username,
		FilePath:     req.FilePath,
		Caption:      req.Title,
		DelaySeconds: req.DelaySeconds,
		Visibility:   i.visibility,
	})
	if err != nil {
		slog.Warn("publisher reported failure", "error", err, "account", req.Username)
		return Result{OK: false, Detail: boundDetail(err.Error())}
	}
	return Result{OK: true}
}

func boundDetail(detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return "unknown error"
	}
	r := []rune(detail)
	if len(r) <= maxDetailRunes {
		return detail
	}
	return string(r[:maxDetailRunes]) + "…"
}
