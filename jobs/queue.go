package jobs

import (
	"context"
	"errors"
	"log"
	"sync"

	"json2video/config"
	"json2video/shared/kafka"
)

// Submitter accepts render requests for asynchronous processing
type Submitter interface {
	Submit(ctx context.Context, req RenderRequest) error
}

// ErrQueueClosed is returned by Submit after Close
var ErrQueueClosed = errors.New("render queue is closed")

// Queue renders submitted jobs in this process, at most workers at a time
type Queue struct {
	processor *Processor
	ctx       context.Context
	semaphore chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	closed    bool
}

// NewQueue runs jobs under ctx; cancelling it aborts in-flight renders
func NewQueue(ctx context.Context, p *Processor, workers int) *Queue {
	if workers <= 0 {
		workers = config.MaxConcurrentJobs
	}
	return &Queue{processor: p, ctx: ctx, semaphore: make(chan struct{}, workers)}
}

func (q *Queue) Submit(ctx context.Context, req RenderRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	q.processor.MarkQueued(ctx, req.JobID)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		select {
		case q.semaphore <- struct{}{}:
		case <-q.ctx.Done():
			return
		}
		defer func() { <-q.semaphore }()
		q.processor.Handle(q.ctx, req)
	}()
	return nil
}

// Close stops accepting jobs and waits for the running ones
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
}

// MessagePublisher is the part of the Kafka producer the submitter needs
type MessagePublisher interface {
	Publish(key string, v any) error
}

// KafkaSubmitter hands jobs to the render-request topic for a consumer to pick up
type KafkaSubmitter struct {
	producer  MessagePublisher
	processor *Processor
}

func NewKafkaSubmitter(producer MessagePublisher, p *Processor) *KafkaSubmitter {
	return &KafkaSubmitter{producer: producer, processor: p}
}

func (k *KafkaSubmitter) Submit(ctx context.Context, req RenderRequest) error {
	if err := k.producer.Publish(req.JobID, req); err != nil {
		return err
	}
	k.processor.MarkQueued(ctx, req.JobID)
	return nil
}

// NewKafkaHandler decodes render requests from the topic and runs them.
// Malformed requests are committed and dropped; failed renders are recorded
// in the job status and committed too, since retrying a deterministic render
// gives the same result.
func NewKafkaHandler(p *Processor) *kafka.TypedMessageHandler[RenderRequest] {
	return &kafka.TypedMessageHandler[RenderRequest]{
		Validate: func(req *RenderRequest) bool {
			if err := req.Check(); err != nil {
				log.Printf("⚠️  Skipping render request: %v", err)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, key string, req *RenderRequest) error {
			status := p.Handle(ctx, *req)
			if status.State == StateFailed && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		},
		AlwaysMark: true,
	}
}
