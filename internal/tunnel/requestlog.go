package tunnel

import (
	"context"
	"fmt"
	"io"
)

const (
	// How many recent requests to ask the agent for per poll.
	logTailLimit = 50

	// Column width the request URI is padded or truncated to.
	logURIWidth = 48
)

// LogTail polls the agent's request log and prints one line per request it
// has not shown before. Seen ids are remembered for the lifetime of the run.
type LogTail struct {
	agent *AgentClient
	out   io.Writer
	seen  map[string]struct{}
}

// NewLogTail creates a LogTail writing formatted lines to out.
func NewLogTail(agent *AgentClient, out io.Writer) *LogTail {
	return &LogTail{
		agent: agent,
		out:   out,
		seen:  make(map[string]struct{}),
	}
}

// Poll fetches the recent request log and emits every entry not yet seen, in
// the order the agent returned them.
func (t *LogTail) Poll(ctx context.Context) error {
	entries, err := t.agent.RecentRequests(ctx, logTailLimit)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if _, ok := t.seen[entry.ID]; ok {
			continue
		}
		t.seen[entry.ID] = struct{}{}

		fmt.Fprintf(t.out, "%d %s %-*.*s %s\n",
			entry.StatusCode,
			entry.Method,
			logURIWidth, logURIWidth, entry.URI,
			entry.Time.Format("15:04:05"),
		)
	}

	return nil
}
