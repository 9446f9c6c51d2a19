package service

import (
	"context"
	"sync"
	"time"

	"balloting-backend/errors"
	"balloting-backend/metrics"
	"balloting-backend/models"
)

const DefaultQueueSize = 128

// QueueProcessor executes signed operations one at a time, in the order
// they were submitted.
type QueueProcessor struct {
	service         *BallotingService
	requestCh       chan *OperationRequest
	processingWg    sync.WaitGroup
	mu              sync.RWMutex
	started         bool
	stopped         bool
	processingDelay time.Duration // For benchmarking purposes
}

type OperationRequest struct {
	Ctx      context.Context
	Signed   models.SignedOperation
	ResultCh chan<- *ProcessingResult
}

type ProcessingResult struct {
	Receipt *models.Receipt
	Err     error
}

func NewQueueProcessor(service *BallotingService, queueSize int, processingDelay time.Duration) *QueueProcessor {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &QueueProcessor{
		service:         service,
		requestCh:       make(chan *OperationRequest, queueSize),
		processingDelay: processingDelay,
	}
}

func (qp *QueueProcessor) Start() {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if qp.started || qp.stopped {
		return
	}
	qp.started = true

	qp.processingWg.Add(1)
	go qp.worker()
}

// Stop refuses new requests, then waits until every queued one has been
// processed.
func (qp *QueueProcessor) Stop() {
	qp.mu.Lock()
	if qp.stopped {
		qp.mu.Unlock()
		return
	}
	qp.stopped = true
	close(qp.requestCh)
	started := qp.started
	qp.mu.Unlock()

	if !started {
		// nobody else will drain the queue
		qp.processingWg.Add(1)
		go qp.worker()
	}
	qp.processingWg.Wait()
}

// Submit queues signed. The returned channel yields exactly one result.
func (qp *QueueProcessor) Submit(ctx context.Context, signed models.SignedOperation) <-chan *ProcessingResult {
	resultCh := make(chan *ProcessingResult, 1)

	qp.mu.RLock()
	defer qp.mu.RUnlock()

	if qp.stopped {
		metrics.Queue.RejectedTotal.With("reason", "stopped").Add(1)
		resultCh <- &ProcessingResult{Err: errors.QueueStopped.Clone()}
		close(resultCh)
		return resultCh
	}

	select {
	case qp.requestCh <- &OperationRequest{Ctx: ctx, Signed: signed, ResultCh: resultCh}:
		metrics.Queue.AddSize(1)
	default:
		metrics.Queue.RejectedTotal.With("reason", "full").Add(1)
		log.Warn("operation queue is full", "op", signed.Operation.String())
		resultCh <- &ProcessingResult{Err: errors.QueueFull.Clone().SetData("capacity", cap(qp.requestCh))}
		close(resultCh)
	}

	return resultCh
}

// Execute submits signed and waits for its result.
func (qp *QueueProcessor) Execute(ctx context.Context, signed models.SignedOperation) (*models.Receipt, error) {
	select {
	case result := <-qp.Submit(ctx, signed):
		return result.Receipt, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (qp *QueueProcessor) worker() {
	defer qp.processingWg.Done()

	for req := range qp.requestCh {
		metrics.Queue.AddSize(-1)

		if qp.processingDelay > 0 {
			time.Sleep(qp.processingDelay)
		}

		ctx := req.Ctx
		if ctx == nil {
			ctx = context.Background()
		}

		receipt, err := qp.service.ExecuteSigned(ctx, req.Signed)
		req.ResultCh <- &ProcessingResult{Receipt: receipt, Err: err}
		close(req.ResultCh)
	}
}
