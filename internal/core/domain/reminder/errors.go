package reminder

import "errors"

var (
	ErrScheduleNotMatched   = errors.New("text does not match the schedule format")
	ErrStoreFailure         = errors.New("reminder store failure")
	ErrReminderDoesNotExist = errors.New("reminder does not exist")
	ErrReminderAlreadySent  = errors.New("reminder has already been reminded")
)

var (
	ErrTitleTooLong    = errors.New("reminder title is too long")
	ErrLeadTimeTooLong = errors.New("reminder lead time is too long")
)
