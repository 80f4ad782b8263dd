// Publish job submissions to Kafka so that a monitoring pipeline can pick up the runs as they
// start.  One JSON record per job, keyed by the run directory.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	. "stdpbench/common"
	"stdpbench/sweep"
)

type SubmissionEvent struct {
	Directory      string `json:"directory"`
	Script         string `json:"script"`
	JobID          string `json:"job_id,omitempty"`
	NeuronsPerCore int    `json:"neurons_per_core"`
	Nodes          int    `json:"nodes"`
	Threads        int    `json:"threads"`
	Procs          int    `json:"procs"`
	Scale          int    `json:"scale"`
	SubmittedAt    string `json:"submitted_at"`
}

// *kgo.Client implements this.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Notifier struct {
	producer Producer
	topic    string
	now      func() time.Time
}

func NewNotifier(producer Producer, topic string) *Notifier {
	return &Notifier{producer: producer, topic: topic, now: time.Now}
}

func NewEvent(s sweep.Submission, at time.Time) SubmissionEvent {
	return SubmissionEvent{
		Directory:      s.Dir,
		Script:         s.Script,
		JobID:          s.JobID,
		NeuronsPerCore: s.Config.NeuronsPerCore,
		Nodes:          s.Config.Nodes,
		Threads:        s.Config.Threads,
		Procs:          s.Config.Procs(),
		Scale:          s.Scale,
		SubmittedAt:    at.UTC().Format(time.RFC3339),
	}
}

func (n *Notifier) Publish(ctx context.Context, subs []sweep.Submission) error {
	if len(subs) == 0 {
		return nil
	}
	at := n.now()
	records := make([]*kgo.Record, 0, len(subs))
	for _, s := range subs {
		value, err := json.Marshal(NewEvent(s, at))
		if err != nil {
			return err
		}
		records = append(records, &kgo.Record{Topic: n.topic, Key: []byte(s.Dir), Value: value})
	}
	if err := n.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("Publishing to %s: %w", n.topic, err)
	}
	Log.Infof("Published %d submissions to %s", len(records), n.topic)
	return nil
}

// Publish each job as it is submitted.  A job that made it into the queue is announced even if the
// run is interrupted after that, so publishing does not see the cancellation of ctx and is bounded
// by PublishTimeout instead.

const PublishTimeout = 30 * time.Second

func (n *Notifier) Hook(ctx context.Context) sweep.SubmitHook {
	ctx = context.WithoutCancel(ctx)
	return func(s sweep.Submission) error {
		pctx, cancel := context.WithTimeout(ctx, PublishTimeout)
		defer cancel()
		return n.Publish(pctx, []sweep.Submission{s})
	}
}

// A client for the configured broker.  It connects lazily, the caller must Close it.
func Dial(cfg *NotifyConfig) (*kgo.Client, error) {
	cl, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBroker))
	if err != nil {
		return nil, fmt.Errorf("Failed to create Kafka client: %w", err)
	}
	return cl, nil
}
