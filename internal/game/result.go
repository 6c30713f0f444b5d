package game

// Result is the outcome of a submitted action. Rejections carry a stable
// reason code and never mutate session state; failures are returned as
// values, not errors.
type Result struct {
	Accepted bool
	Reason   Reason         // set when !Accepted
	Message  string         // short, user-presentable
	Data     map[string]any // game-specific result details
}

// Accept builds an accepted result.
func Accept(message string) Result {
	return Result{Accepted: true, Message: message}
}

// AcceptData builds an accepted result with extra details.
func AcceptData(message string, data map[string]any) Result {
	return Result{Accepted: true, Message: message, Data: data}
}

// Reject builds a rejected result with a reason code.
func Reject(reason Reason, message string) Result {
	return Result{Accepted: false, Reason: reason, Message: message}
}
