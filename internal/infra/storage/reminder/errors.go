package reminder

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder.repository: reminder not found")
	ErrBuildQuery       = errors.New("reminder.repository: failed to build query")
	ErrExecQuery        = errors.New("reminder.repository: failed to execute query")
	ErrScanRow          = errors.New("reminder.repository: failed to scan row")
)
