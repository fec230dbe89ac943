package wavefront

import (
	"context"
	"runtime"
	"sync"
)

// chunkTask is a contiguous range of paths of one batch
type chunkTask struct {
	Pass       int
	Chunk      int
	Start, End int
}

// chunkResult reports a finished or skipped chunk
type chunkResult struct {
	Chunk int
	Paths int
	Err   error
}

// workerPool runs chunk tasks on a fixed number of goroutines
type workerPool struct {
	taskQueue   chan chunkTask
	resultQueue chan chunkResult
	numWorkers  int
	wg          sync.WaitGroup
}

// newWorkerPool creates a pool; numWorkers <= 0 uses one worker per CPU
func newWorkerPool(numWorkers, maxTasks int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &workerPool{
		taskQueue:   make(chan chunkTask, maxTasks),
		resultQueue: make(chan chunkResult, maxTasks),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers. Each worker checks ctx before every task and
// reports canceled tasks without running them.
func (wp *workerPool) Start(ctx context.Context, run func(task chunkTask) int) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go func() {
			defer wp.wg.Done()
			for task := range wp.taskQueue {
				if err := ctx.Err(); err != nil {
					wp.resultQueue <- chunkResult{Chunk: task.Chunk, Err: err}
					continue
				}
				wp.resultQueue <- chunkResult{Chunk: task.Chunk, Paths: run(task)}
			}
		}()
	}
}

// Submit queues a task. The task queue must have room for it.
func (wp *workerPool) Submit(task chunkTask) {
	wp.taskQueue <- task
}

// Stop waits for queued tasks to drain and closes the result queue
func (wp *workerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Results returns the result channel, closed after Stop
func (wp *workerPool) Results() <-chan chunkResult {
	return wp.resultQueue
}
