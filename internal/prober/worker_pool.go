package prober

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CheckFunc probes one URL.
type CheckFunc func(ctx context.Context, url string) ProbeResult

// WorkerPool runs probe tasks on a fixed number of workers. The worker count
// is the ceiling on simultaneous outbound requests; submissions beyond it
// queue until a worker frees up.
type WorkerPool struct {
	check          CheckFunc
	tasks          chan Task
	results        chan ProbeResult
	progressChan   chan ProgressUpdate
	wg             sync.WaitGroup
	numWorkers     int
	totalTasks     int
	completedTasks int
	aliveTasks     int
	mu             sync.RWMutex
}

// Task is a single probe task.
type Task struct {
	ID  int
	URL string
}

// ProgressUpdate provides progress information.
type ProgressUpdate struct {
	URL         string
	Status      TaskStatus
	Message     string
	TaskID      int
	Completed   int
	Total       int
	ElapsedTime time.Duration
}

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusAlive      TaskStatus = "alive"
	TaskStatusDead       TaskStatus = "dead"
)

// NewWorkerPool creates a worker pool with the specified number of workers.
func NewWorkerPool(numWorkers int, check CheckFunc) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	return &WorkerPool{
		check:        check,
		numWorkers:   numWorkers,
		tasks:        make(chan Task, numWorkers*2), // Buffer to prevent blocking
		results:      make(chan ProbeResult, numWorkers*2),
		progressChan: make(chan ProgressUpdate, 100),
	}
}

// Start launches the workers. ctx is handed to every check; the pool itself
// has no abort path, a started batch drains all submitted tasks.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, workerID int) {
	defer wp.wg.Done()

	for task := range wp.tasks {
		wp.processTask(ctx, workerID, task)
	}
}

func (wp *WorkerPool) processTask(ctx context.Context, workerID int, task Task) {
	start := time.Now()

	wp.sendProgress(ProgressUpdate{
		TaskID:  task.ID,
		URL:     task.URL,
		Status:  TaskStatusProcessing,
		Message: fmt.Sprintf("Worker %d started probing", workerID),
	})

	result := wp.check(ctx, task.URL)
	elapsed := time.Since(start)

	wp.mu.Lock()
	wp.completedTasks++
	if result.Alive {
		wp.aliveTasks++
	}
	completed := wp.completedTasks
	total := wp.totalTasks
	wp.mu.Unlock()

	status := TaskStatusAlive
	message := fmt.Sprintf("Worker %d: alive in %v", workerID, elapsed)

	if !result.Alive {
		status = TaskStatusDead
		message = fmt.Sprintf("Worker %d: dead (%s)", workerID, result.Reason())
	}

	wp.sendProgress(ProgressUpdate{
		TaskID:      task.ID,
		URL:         task.URL,
		Status:      status,
		Completed:   completed,
		Total:       total,
		ElapsedTime: elapsed,
		Message:     message,
	})

	wp.results <- result
}

// sendProgress sends a progress update if the channel is not full.
func (wp *WorkerPool) sendProgress(update ProgressUpdate) {
	select {
	case wp.progressChan <- update:
	default:
		// Progress channel is full, skip this update to avoid blocking
	}
}

// Submit queues a task, blocking while the queue is full.
func (wp *WorkerPool) Submit(task Task) {
	wp.mu.Lock()
	wp.totalTasks++
	wp.mu.Unlock()

	wp.sendProgress(ProgressUpdate{
		TaskID:  task.ID,
		URL:     task.URL,
		Status:  TaskStatusPending,
		Message: "Task queued for probing",
	})

	wp.tasks <- task
}

// Results returns the results channel. Exactly one collector should drain it.
func (wp *WorkerPool) Results() <-chan ProbeResult {
	return wp.results
}

// Progress returns the progress channel for reading progress updates.
func (wp *WorkerPool) Progress() <-chan ProgressUpdate {
	return wp.progressChan
}

// Wait closes the queue, waits for all submitted tasks and closes the
// results and progress channels.
func (wp *WorkerPool) Wait() {
	close(wp.tasks)
	wp.wg.Wait()
	close(wp.results)
	close(wp.progressChan)
}

// Stats returns current processing statistics.
func (wp *WorkerPool) Stats() WorkerPoolStats {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	return WorkerPoolStats{
		TotalTasks:     wp.totalTasks,
		CompletedTasks: wp.completedTasks,
		PendingTasks:   wp.totalTasks - wp.completedTasks,
		AliveTasks:     wp.aliveTasks,
		NumWorkers:     wp.numWorkers,
	}
}

// WorkerPoolStats provides statistics about the worker pool.
type WorkerPoolStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	AliveTasks     int `json:"alive_tasks"`
	NumWorkers     int `json:"num_workers"`
}
