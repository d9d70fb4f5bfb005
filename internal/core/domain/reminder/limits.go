package reminder

const (
	MAX_TEXT_LEN  = 1024
	MAX_TITLE_LEN = 256
	// MAX_REMIND_BEFORE_MINUTES is one leap year.
	MAX_REMIND_BEFORE_MINUTES = 366 * 24 * 60
	// DEFAULT_LIST_LIMIT bounds the pending reminders shown to a user.
	DEFAULT_LIST_LIMIT = 10
)
