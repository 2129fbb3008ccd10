package usecase

const (
	MsgGreeting        = "Hi, %s! I collect reports about problems in the city. Send /add to report one."
	MsgHelp            = "/add - report a problem\n/cancel - drop the report in progress\n/help - show this message"
	MsgNothingToCancel = "There is nothing to cancel."
	MsgUseAdd          = "Send /add to start a new report."

	MsgCreationEnter = "Describe the problem, send its location and attach photos. Everything can be sent in any order."
	MsgCreationHelp  = "Send a text message with the description, share a location and attach photos if you have them. " +
		"When the description and the location are in place, pick a category to send the report. /cancel drops it."
	MsgCreationAdded    = "Added. Still missing: %s."
	MsgRequestCategory  = "Added. Choose a category to send the report."
	MsgNotReady         = "The report can't be sent yet. Still missing: %s."
	MsgPhotoFailed      = "Couldn't fetch this photo, please send it again."
	MsgCreationCanceled = "The report was dropped."
	MsgSubmitted        = "Thank you! Your report #%s has been sent."
	MsgSubmitFailed     = "The report couldn't be saved. Please pick the category again in a moment."

	MsgNotAllowed      = "This command is available to moderators only."
	MsgNoTickets       = "There are no tickets yet."
	MsgTooManyRequests = "You are sending messages too fast, please slow down."
)
