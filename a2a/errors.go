package a2a

import "errors"

// Agent Card validation errors.
var (
	// ErrMissingName indicates the agent card is missing a name.
	ErrMissingName = errors.New("agent card: missing name")
	// ErrMissingURL indicates the agent card is missing a URL.
	ErrMissingURL = errors.New("agent card: missing url")
	// ErrMissingVersion indicates the agent card is missing a version.
	ErrMissingVersion = errors.New("agent card: missing version")
)

// Message validation errors.
var (
	// ErrMessageMissingID indicates the message is missing a message ID.
	ErrMessageMissingID = errors.New("a2a message: missing messageId")
	// ErrMessageMissingRole indicates the message is missing a role.
	ErrMessageMissingRole = errors.New("a2a message: missing role")
	// ErrMessageNoParts indicates the message carries no parts.
	ErrMessageNoParts = errors.New("a2a message: no parts")
)

// Protocol errors.
var (
	// ErrRemoteUnavailable indicates the remote agent is unreachable or
	// returned a non-success HTTP status.
	ErrRemoteUnavailable = errors.New("a2a: remote agent unavailable")
	// ErrInvalidResponse indicates the response could not be decoded.
	ErrInvalidResponse = errors.New("a2a: invalid response")
	// ErrTaskNotFound indicates the server does not know the task ID.
	ErrTaskNotFound = errors.New("a2a: task not found")
	// ErrTaskNotCancelable indicates the task is already in a terminal state.
	ErrTaskNotCancelable = errors.New("a2a: task cannot be canceled")
	// ErrMissingTaskID indicates a send response exposed no task identifier.
	ErrMissingTaskID = errors.New("a2a: no task id in response")
	// ErrStreamingNotSupported indicates the agent card does not advertise
	// streaming capability.
	ErrStreamingNotSupported = errors.New("a2a: agent does not support streaming")
	// ErrPollLimit indicates the poller hit its iteration bound before the
	// task reached a terminal state.
	ErrPollLimit = errors.New("a2a: poll limit reached before task finished")
)
