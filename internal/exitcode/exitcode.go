package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	StageError      = 4
	MergeError      = 5
	ServeError      = 6
)
