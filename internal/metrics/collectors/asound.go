package collectors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/audiohal/internal/logging"
	"github.com/smazurov/audiohal/internal/metrics"
)

// PCMCollector exports the substream counts listed in /proc/asound/pcm.
type PCMCollector struct {
	logger   *slog.Logger
	procPath string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPCMCollector creates a collector polling every interval.
func NewPCMCollector(interval time.Duration) *PCMCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PCMCollector{
		logger:   logging.GetLogger("metrics"),
		procPath: "/proc/asound/pcm",
		interval: interval,
	}
}

// Start begins polling.
func (p *PCMCollector) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)
	go p.run()
	return nil
}

// Stop stops polling.
func (p *PCMCollector) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// Refresh re-reads the PCM list immediately, e.g. after a card hotplug.
func (p *PCMCollector) Refresh() {
	p.collect()
}

func (p *PCMCollector) run() {
	p.logger.Info("Starting ALSA PCM metrics collection", "path", p.procPath, "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collect()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.collect()
		}
	}
}

func (p *PCMCollector) collect() {
	file, err := os.Open(p.procPath)
	if err != nil {
		p.logger.Debug("Failed to open ALSA PCM list", "error", err)
		return
	}
	defer file.Close()

	pcms, err := parsePCMList(file)
	if err != nil {
		p.logger.Warn("Failed to parse ALSA PCM list", "error", err)
		return
	}

	metrics.ResetPCMSubstreams()
	for _, pcm := range pcms {
		for stream, count := range pcm.Substreams {
			metrics.SetPCMSubstreams(pcm.Name, stream, float64(count))
		}
	}
}

type pcmEntry struct {
	Name       string
	ID         string
	Substreams map[string]int
}

func parsePCMList(r io.Reader) ([]pcmEntry, error) {
	var pcms []pcmEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pcm, err := parsePCMLine(line)
		if err != nil {
			continue
		}
		pcms = append(pcms, *pcm)
	}
	return pcms, scanner.Err()
}

// parsePCMLine reads one line such as
// "00-01: ALC892 Digital : ALC892 Digital : playback 1 : capture 1".
func parsePCMLine(line string) (*pcmEntry, error) {
	fields := strings.Split(line, ":")
	if len(fields) < 3 {
		return nil, fmt.Errorf("insufficient fields")
	}

	card, dev, ok := strings.Cut(strings.TrimSpace(fields[0]), "-")
	if !ok {
		return nil, fmt.Errorf("malformed pcm id %q", fields[0])
	}
	cardNum, err := strconv.Atoi(card)
	if err != nil {
		return nil, err
	}
	devNum, err := strconv.Atoi(dev)
	if err != nil {
		return nil, err
	}

	entry := &pcmEntry{
		Name:       fmt.Sprintf("hw:%d,%d", cardNum, devNum),
		ID:         strings.TrimSpace(fields[1]),
		Substreams: make(map[string]int, 2),
	}
	for _, f := range fields[3:] {
		parts := strings.Fields(f)
		if len(parts) != 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		entry.Substreams[parts[0]] = n
	}
	if len(entry.Substreams) == 0 {
		return nil, fmt.Errorf("no substreams in %q", line)
	}
	return entry, nil
}
