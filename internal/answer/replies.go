package answer

// Canned replies used when generation is skipped or fails.
const (
	GreetingReply = "Hii 👋\nWhat's up? How can I help you today?"
	NoDataReply   = "I couldn't find any data matching your request. Please try rephrasing or check if the data exists in the system."
	ErrorReply    = "I encountered an error generating the response."
	ApologyReply  = "Sorry, I'm having trouble starting your conversation right now. Please try again in a moment."
)
