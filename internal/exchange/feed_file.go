package exchange

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ctabot-go/internal/signal"
)

// runFile replays a JSONL recording. Lines for untracked symbols are skipped
// when a symbol list is configured; malformed lines are logged and skipped.
func (f *Feed) runFile(ctx context.Context, out chan<- signal.Tick) error {
	if f.ticksFile == "" {
		return fmt.Errorf("file feed requires a ticks file")
	}
	file, err := os.Open(f.ticksFile)
	if err != nil {
		return fmt.Errorf("open ticks file: %w", err)
	}
	defer file.Close()

	tracked := make(map[string]bool)
	for _, sym := range f.Symbols() {
		tracked[sym] = true
	}

	scanner := bufio.NewScanner(file)
	line, replayed := 0, 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var tick signal.Tick
		if err := json.Unmarshal([]byte(text), &tick); err != nil {
			f.log.Warn().Err(err).Int("line", line).Msg("skipping malformed tick")
			continue
		}
		if len(tracked) > 0 && !tracked[tick.Symbol] {
			continue
		}
		if err := f.emit(ctx, out, tick); err != nil {
			return err
		}
		replayed++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ticks file: %w", err)
	}
	f.log.Info().Int("ticks", replayed).Str("path", f.ticksFile).Msg("replay finished")
	return nil
}
