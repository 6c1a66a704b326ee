package worker

// Log Messages - Worker Pool
const (
	// LogMsgWorkerJobFailed is logged when a worker fails to process a job
	LogMsgWorkerJobFailed = "Worker job failed"
)

// Log Messages - Maintenance Jobs
const (
	LogMsgClaimDecayApplied = "Claim decay applied"
	LogMsgLootExpirySwept   = "Expired loot swept"
)

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
