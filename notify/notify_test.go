package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"stdpbench/sweep"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

// Like the real client, nothing is produced on a dead context.
func (f *fakeProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	err := f.err
	if ctx.Err() != nil {
		err = ctx.Err()
	} else {
		f.records = append(f.records, rs...)
	}
	results := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		results[i] = kgo.ProduceResult{Record: r, Err: err}
	}
	return results
}

func TestPublish(t *testing.T) {
	fp := &fakeProducer{}
	n := NewNotifier(fp, "stdpbench.submissions")
	n.now = func() time.Time { return time.Date(2013, 4, 1, 12, 0, 0, 0, time.UTC) }
	subs := []sweep.Submission{
		{
			Config: sweep.Configuration{NeuronsPerCore: 112, Nodes: 512, Threads: 8},
			Scale:  40,
			Dir:    "sim_openmp_weak_trunk_NPC112_N4096",
			Script: "stdp_scale_4096.sh",
			JobID:  "4711",
		},
	}
	if err := n.Publish(context.Background(), subs); err != nil {
		t.Fatal(err)
	}
	if len(fp.records) != 1 {
		t.Fatalf("Records %d", len(fp.records))
	}
	r := fp.records[0]
	if r.Topic != "stdpbench.submissions" || string(r.Key) != "sim_openmp_weak_trunk_NPC112_N4096" {
		t.Fatalf("Record %s %s", r.Topic, r.Key)
	}
	var ev SubmissionEvent
	if err := json.Unmarshal(r.Value, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Procs != 4096 || ev.Scale != 40 || ev.JobID != "4711" || ev.SubmittedAt != "2013-04-01T12:00:00Z" {
		t.Fatalf("Event %+v", ev)
	}
}

func TestPublishNothing(t *testing.T) {
	fp := &fakeProducer{}
	if err := NewNotifier(fp, "x").Publish(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(fp.records) != 0 {
		t.Fatal("Nothing should be produced")
	}
}

func TestPublishFails(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	subs := []sweep.Submission{{Dir: "d", Script: "s"}}
	if err := NewNotifier(fp, "x").Publish(context.Background(), subs); err == nil {
		t.Fatal("Expected error")
	}
}

func TestHookAfterCancel(t *testing.T) {
	fp := &fakeProducer{}
	ctx, cancel := context.WithCancel(context.Background())
	hook := NewNotifier(fp, "x").Hook(ctx)
	if err := hook(sweep.Submission{Dir: "a", Script: "stdp_scale_64.sh"}); err != nil {
		t.Fatal(err)
	}
	cancel()
	// The job was submitted before the interrupt took effect
	if err := hook(sweep.Submission{Dir: "b", Script: "stdp_scale_128.sh"}); err != nil {
		t.Fatal(err)
	}
	if len(fp.records) != 2 || string(fp.records[1].Key) != "b" {
		t.Fatalf("Records %v", fp.records)
	}
}
