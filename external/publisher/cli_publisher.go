package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/tokpost/internal/publisher"
)

const (
	stderrTailBytes  = 2048
	processWaitDelay = 5 * time.Second
)

type CLIConfig struct {
	Command    string
	ConfigPath string
	Timeout    time.Duration
}

// CLIPublisher drives the uploader's command line. The uploader reads its
// own config file, so commands run in the directory that holds it.
type CLIPublisher struct {
	name    string
	args    []string
	workDir string
	timeout time.Duration
}

func NewCLIPublisher(cfg CLIConfig) (publisher.Publisher, error) {
	fields := strings.Fields(cfg.Command)
	if len(fields) == 0 {
		return nil, errors.New("publisher command is empty")
	}
	workDir := ""
	if cfg.ConfigPath != "" {
		abs, err := filepath.Abs(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("resolve publisher config path: %w", err)
		}
		workDir = filepath.Dir(abs)
	}
	return &CLIPublisher{
		name:    fields[0],
		args:    fields[1:],
		workDir: workDir,
		timeout: cfg.Timeout,
	}, nil
}

func (p *CLIPublisher) Login(ctx context.Context, accountName string) error {
	if strings.TrimSpace(accountName) == "" {
		return errors.New("account name is required")
	}
	return p.run(ctx, "login", "-n", accountName)
}

// Publish resolves FilePath against the bot's working directory before the
// command switches into the uploader's directory.
func (p *CLIPublisher) Publish(ctx context.Context, input publisher.PublishInput) error {
	abs, err := filepath.Abs(input.FilePath)
	if err != nil {
		return fmt.Errorf("resolve video path: %w", err)
	}
	input.FilePath = abs
	return p.run(ctx, publishArgs(input)...)
}

func publishArgs(input publisher.PublishInput) []string {
	return []string{
		"upload",
		"-u", input.AccountName,
		"-v", input.FilePath,
		"-t", input.Caption,
		"-sc", strconv.FormatInt(input.DelaySeconds, 10),
		"-ct", flag(input.Visibility.AllowComment),
		"-d", flag(input.Visibility.AllowDuet),
		"-st", flag(input.Visibility.AllowStitch),
		// the uploader uses 0 for public, 1 for private
		"-vi", flag(!input.Visibility.Public),
	}
}

func (p *CLIPublisher) run(ctx context.Context, subcommand ...string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := append(append([]string{}, p.args...), subcommand...)
	cmd := exec.CommandContext(ctx, p.name, args...)
	cmd.Dir = p.workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = processWaitDelay

	started := time.Now()
	slog.Info("running publisher command", "command", p.name, "subcommand", subcommand[0], "work_dir", p.workDir)
	err := cmd.Run()
	elapsed := time.Since(started)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("publisher %s timed out after %s: %w", subcommand[0], elapsed.Round(time.Second), ctx.Err())
		}
		tail := stderrTail(stderr.Bytes())
		if tail == "" {
			return fmt.Errorf("publisher %s failed: %w", subcommand[0], err)
		}
		return fmt.Errorf("publisher %s failed: %w: %s", subcommand[0], err, tail)
	}
	slog.Info("publisher command finished", "subcommand", subcommand[0], "elapsed", elapsed)
	return nil
}

func stderrTail(b []byte) string {
	if len(b) > stderrTailBytes {
		b = b[len(b)-stderrTailBytes:]
	}
	return strings.TrimSpace(string(b))
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
