package tracker

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/sadopc/vigil/internal/store"
)

// WindowPoller yields the current foreground window. Platform shims and
// the browser extension live outside the core; they only need to satisfy
// this contract.
type WindowPoller interface {
	Poll(ctx context.Context) (Sample, error)
}

// CommandPoller shells out to a user-configured command that prints one
// line: "title<TAB>process<TAB>url[<TAB>fullscreen]". The url and
// fullscreen fields may be empty.
type CommandPoller struct {
	Command string
}

func (p CommandPoller) Poll(ctx context.Context) (Sample, error) {
	if p.Command == "" {
		return Sample{}, fmt.Errorf("no window command configured")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", p.Command)
	out, err := cmd.Output()
	if err != nil {
		return Sample{}, fmt.Errorf("run window command: %w", err)
	}
	return ParseSampleLine(strings.TrimRight(string(out), "\n"), time.Now().Unix())
}

// ParseSampleLine parses the tab-separated poller output into a sample.
func ParseSampleLine(line string, now int64) (Sample, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Sample{}, fmt.Errorf("malformed sample line %q", line)
	}
	s := Sample{
		Time:        now,
		Title:       fields[0],
		ProcessName: fields[1],
	}
	if len(fields) > 2 {
		s.URL = fields[2]
		s.Domain = DeriveDomain(fields[2])
	}
	if len(fields) > 3 {
		s.Fullscreen = fields[3] == "fullscreen" || fields[3] == "1"
	}
	return s, nil
}

// DeriveDomain extracts the comparison domain from a URL. Non-web schemes
// (browser-internal pages and the like) collapse to "scheme://" so they
// still group as a single pseudo-domain.
func DeriveDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host
	case "":
		return ""
	default:
		return parsed.Scheme + "://"
	}
}

// IdleCheck consults the last-seen input times and returns the idle
// sentinel sample once every recorded kind has been quiet past the
// threshold. Kinds never recorded are skipped; with no recordings at all
// the user is assumed active.
func IdleCheck(st *store.Store, now, idleTime int64) (Sample, bool, error) {
	var newest int64
	var any bool
	for _, kind := range store.IdleInputs {
		t, ok, err := st.LastInput(kind)
		if err != nil {
			return Sample{}, false, err
		}
		if !ok {
			continue
		}
		any = true
		if t > newest {
			newest = t
		}
	}
	if !any || now-newest <= idleTime {
		return Sample{}, false, nil
	}
	return IdleSample(now), true, nil
}
