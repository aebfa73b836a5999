package prober

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker aggregates progress updates for a probe batch.
type ProgressTracker struct {
	startTime    time.Time
	lastUpdate   time.Time
	taskStatuses map[int]TaskStatus
	total        int
	mu           sync.RWMutex
}

// NewProgressTracker creates a tracker for total tasks.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		startTime:    time.Now(),
		lastUpdate:   time.Now(),
		taskStatuses: make(map[int]TaskStatus),
		total:        total,
	}
}

// Update records a progress update.
func (pt *ProgressTracker) Update(update ProgressUpdate) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.taskStatuses[update.TaskID] = update.Status
	pt.lastUpdate = time.Now()
}

// Summary returns a snapshot of the current progress.
func (pt *ProgressTracker) Summary() ProgressSummary {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	summary := ProgressSummary{
		StartTime:    pt.startTime,
		ElapsedTime:  time.Since(pt.startTime),
		StatusCounts: make(map[TaskStatus]int),
		TotalTasks:   pt.total,
	}

	for _, status := range pt.taskStatuses {
		summary.StatusCounts[status]++
	}

	return summary
}

// ProgressSummary provides a summary of progress tracking.
type ProgressSummary struct {
	StartTime    time.Time          `json:"start_time"`
	StatusCounts map[TaskStatus]int `json:"status_counts"`
	ElapsedTime  time.Duration      `json:"elapsed_time"`
	TotalTasks   int                `json:"total_tasks"`
}

// Done returns the number of finished tasks.
func (s ProgressSummary) Done() int {
	return s.StatusCounts[TaskStatusAlive] + s.StatusCounts[TaskStatusDead]
}

// Print writes a one-line progress report, overwriting the previous one.
func (pt *ProgressTracker) Print(w io.Writer) {
	summary := pt.Summary()

	fmt.Fprintf(w, "\r🧹 Probing: %d/%d done", summary.Done(), summary.TotalTasks)

	if alive := summary.StatusCounts[TaskStatusAlive]; alive > 0 {
		fmt.Fprintf(w, " (%d alive)", alive)
	}

	if summary.TotalTasks > 0 {
		percentage := float64(summary.Done()) / float64(summary.TotalTasks) * 100
		fmt.Fprintf(w, " [%.1f%%]", percentage)
	}

	fmt.Fprintf(w, " [%v elapsed]", summary.ElapsedTime.Round(time.Second))
}
