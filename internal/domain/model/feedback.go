package model

// Sentiment values accepted from the feedback form.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
)

// FeedbackSubmission is the body of POST /feedback.
type FeedbackSubmission struct {
	Message          string           `json:"message"`
	IsPositive       bool             `json:"is_positive"`
	CustomDimensions CustomDimensions `json:"custom_dimensions"`
}

// CustomDimensions carries the client the feedback is about.
type CustomDimensions struct {
	ClientID ClientID `json:"client_id"`
}

// NewFeedback builds a submission. The client id is always attached,
// whatever the message contains (including nothing).
func NewFeedback(id ClientID, message string, positive bool) FeedbackSubmission {
	return FeedbackSubmission{
		Message:          message,
		IsPositive:       positive,
		CustomDimensions: CustomDimensions{ClientID: id},
	}
}

// Sentiment returns the metric label for the submission.
func (f FeedbackSubmission) Sentiment() string {
	if f.IsPositive {
		return SentimentPositive
	}
	return SentimentNegative
}
