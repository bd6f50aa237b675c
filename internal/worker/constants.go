package worker

import "time"

// Pool defaults
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 16
)

// Log messages
const (
	LogMsgWorkerJobFailed   = "Worker job failed"
	LogMsgPeriodicScheduled = "Periodic job scheduled"
	LogMsgPeriodicSkipped   = "Periodic job skipped, previous run still queued"
	LogMsgPoolStopTimeout   = "Worker pool stop timed out"
	LogMsgPoolStopped       = "Worker pool stopped"
)

// Log field keys
const (
	LogFieldJob      = "job"
	LogFieldInterval = "interval"
	LogFieldError    = "error"
)

// minInterval guards against a zero ticker.
const minInterval = time.Millisecond
