package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"courtq/internal/dispatch"
	"courtq/internal/logging"
	"courtq/internal/notify"
	"courtq/internal/queue"
	"courtq/internal/testsupport"
)

func samplePromotion() dispatch.Promotion {
	return dispatch.Promotion{
		ScopeID:  "G1",
		Resource: queue.Resource("A"),
		Head:     queue.Entry{Resource: "A", ActorID: "U2", DisplayName: "Bob", Sequence: 7},
	}
}

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notify.Enabled = false
	n := notify.New(cfg, logging.NewNop())
	if err := n.NotifyHead(context.Background(), samplePromotion()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNotifyHeadEnqueuesOncePerPromotion(t *testing.T) {
	mr := testsupport.StartRedis(t)
	cfg := testsupport.NewConfig(t, testsupport.WithRedisStore(mr.Addr()))
	cfg.Notify.Enabled = true

	n := notify.New(cfg, logging.NewNop())
	t.Cleanup(func() { _ = n.Close() })

	promotion := samplePromotion()
	if err := n.NotifyHead(context.Background(), promotion); err != nil {
		t.Fatalf("NotifyHead: %v", err)
	}
	// Redelivery of the same promotion is absorbed by the task id.
	if err := n.NotifyHead(context.Background(), promotion); err != nil {
		t.Fatalf("NotifyHead duplicate: %v", err)
	}

	key := "asynq:{default}:t:notify-head:A:7"
	if !mr.Exists(key) {
		t.Fatalf("expected task hash %s in redis, keys=%v", key, mr.Keys())
	}
}

type fakePusher struct {
	to, text, key string
	calls         int
	err           error
}

func (f *fakePusher) Push(_ context.Context, to, text, key string) error {
	f.calls++
	f.to, f.text, f.key = to, text, key
	return f.err
}

func TestHandleNotifyHeadPushesToHead(t *testing.T) {
	task, err := notify.NewHeadTask(samplePromotion())
	if err != nil {
		t.Fatalf("NewHeadTask: %v", err)
	}
	if task.Type() != notify.TypeNotifyHead {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	pusher := &fakePusher{}
	worker := notify.NewHandler(pusher, logging.NewNop())
	if err := worker.HandleNotifyHead(context.Background(), task); err != nil {
		t.Fatalf("HandleNotifyHead: %v", err)
	}
	if pusher.to != "U2" {
		t.Fatalf("expected push to U2, got %q", pusher.to)
	}
	if pusher.text != "🤖Bob, it's your turn on court A" {
		t.Fatalf("unexpected text %q", pusher.text)
	}

	firstKey := pusher.key
	if err := worker.HandleNotifyHead(context.Background(), task); err != nil {
		t.Fatalf("HandleNotifyHead retry: %v", err)
	}
	if pusher.key != firstKey || firstKey == "" {
		t.Fatalf("retry key should be stable, got %q then %q", firstKey, pusher.key)
	}
}

func TestHandleNotifyHeadErrors(t *testing.T) {
	pusher := &fakePusher{err: errors.New("line down")}
	worker := notify.NewHandler(pusher, logging.NewNop())

	task, _ := notify.NewHeadTask(samplePromotion())
	if err := worker.HandleNotifyHead(context.Background(), task); err == nil {
		t.Fatal("expected push error to be returned for retry")
	}

	bad := asynq.NewTask(notify.TypeNotifyHead, []byte("{"))
	err := worker.HandleNotifyHead(context.Background(), bad)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}
	if pusher.calls != 1 {
		t.Fatalf("expected malformed payload not to push, calls=%d", pusher.calls)
	}
}
