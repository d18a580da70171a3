// internal/domain/models/collections.go
package models

// Collection names in the document store.
const (
	CollUsers             = "users"
	CollNewsletters       = "newsletters"
	CollMemberships       = "newsletterMemberships"
	CollQuestions         = "questions"
	CollSessions          = "sessions"
	CollAssignments       = "questionAssignments"
	CollResponses         = "userResponses"
	CollWeeklyAssignments = "weeklyAssignments"
)
