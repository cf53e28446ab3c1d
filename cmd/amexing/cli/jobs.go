package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/amexing/amexing-ops/jobs"
)

// Enqueuer is the part of jobs.Client used by the CLI.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) error
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	queue     Enqueuer
	inspector jobs.QueueInspector
	stdout    io.Writer
	stderr    io.Writer
}

// NewJobsCLI initialises the CLI helpers.
func NewJobsCLI(queue Enqueuer, inspector jobs.QueueInspector, stdout, stderr io.Writer) *JobsCLI {
	return &JobsCLI{queue: queue, inspector: inspector, stdout: stdout, stderr: stderr}
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
	}
	return stats, nil
}

// Run executes a jobs subcommand and returns the process exit code.
//
//	jobs stats
//	jobs test-email --to a@b.mx[,c@d.mx]
func (c *JobsCLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "usage: amexing jobs <stats|test-email> [flags]")
		return 2
	}
	switch args[0] {
	case "stats":
		stats, err := c.InspectQueue()
		if err != nil {
			fmt.Fprintf(c.stderr, "jobs stats: %v\n", err)
			return 1
		}
		fmt.Fprintf(c.stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
		return 0
	case "test-email":
		fs := flag.NewFlagSet("test-email", flag.ContinueOnError)
		fs.SetOutput(c.stderr)
		to := fs.String("to", "", "comma separated recipients")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		var recipients []string
		for _, addr := range strings.Split(*to, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				recipients = append(recipients, addr)
			}
		}
		if len(recipients) == 0 {
			fmt.Fprintln(c.stderr, "jobs test-email: --to is required")
			return 2
		}
		err := c.queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
			To:      recipients,
			Subject: "Prueba de correo Amexing",
			Body:    "Este es un correo de prueba enviado desde la línea de comandos.",
		})
		if err != nil {
			fmt.Fprintf(c.stderr, "jobs test-email: %v\n", err)
			return 1
		}
		fmt.Fprintf(c.stdout, "queued %s for %s\n", jobs.TaskTypeSendEmail, strings.Join(recipients, ", "))
		return 0
	default:
		fmt.Fprintf(c.stderr, "jobs: unknown command %q\n", args[0])
		return 2
	}
}

var _ jobs.QueueInspector = (*asynq.Inspector)(nil)
