package email

const (
	subjectLeadWelcome = "Welcome! Here's what happens next"
	subjectDealWon     = "Thank you for your business"
)
