// Command taskforge-demo wires a work queue, an access queue and a cron
// schedule together against a structured logger, as a runnable example of
// the taskforge package.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskforge/taskforge"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := taskforge.NewWorkQueue(ctx, taskforge.WorkQueueConfig{
		MaxPriority: 1,
		MaxParallel: 4,
		MaxAttempts: 3,
	}, log)
	if err != nil {
		log.Error("failed to start work queue", "err", err)
		os.Exit(1)
	}
	defer queue.Stop(5 * time.Second)

	conns, err := taskforge.NewStaticAccessQueue(ctx, taskforge.AccessQueueConfig{
		MaxAttempts: 3,
	}, []*demoConnection{newDemoConnection(1), newDemoConnection(2)}, log)
	if err != nil {
		log.Error("failed to start access queue", "err", err)
		os.Exit(1)
	}
	defer conns.Stop(5 * time.Second)

	scheduler, err := taskforge.NewScheduler[struct{}](ctx, taskforge.SchedulerConfig{
		Concurrency: 1,
		OnOutcome: func(id string, stillLive bool) {
			log.Info("scheduled occurrence finished", "id", id, "live", stillLive)
		},
	}, log)
	if err != nil {
		log.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer scheduler.Stop(5 * time.Second)

	for i := 0; i < 10; i++ {
		n := i
		if _, err := queue.Enqueue(func(ctx context.Context) error {
			log.Info("work item running", "n", n)
			return nil
		}, 3, n%2); err != nil {
			log.Error("enqueue failed", "err", err)
		}
	}

	if _, err := conns.Enqueue(func(ctx context.Context, conn *demoConnection) error {
		log.Info("query running", "connection", conn.id)
		return nil
	}, 3, 0); err != nil {
		log.Error("access-queue enqueue failed", "err", err)
	}

	if _, err := scheduler.AddCronWork("*/5 * * * * *", -1, func(ctx context.Context) (struct{}, error) {
		log.Info("cron tick")
		return struct{}{}, nil
	}); err != nil {
		log.Error("cron schedule failed", "err", err)
	}

	<-ctx.Done()
	fmt.Println("shutting down")
}

type demoConnection struct {
	id     int
	active bool
}

func newDemoConnection(id int) *demoConnection {
	return &demoConnection{id: id}
}

func (c *demoConnection) IsActive() bool { return c.active }

func (c *demoConnection) Activate(ctx context.Context) error {
	if ctx.Err() != nil {
		return errors.New("activation cancelled")
	}
	c.active = true
	return nil
}

func (c *demoConnection) Deactivate(context.Context) error {
	c.active = false
	return nil
}
