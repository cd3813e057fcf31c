package collection

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultAutoHideMs is how long the panels keep a notification on screen.
const DefaultAutoHideMs = 6000

// Notification is the transient result surfaced after a mutation.
type Notification struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	AutoHideMs int      `json:"autoHideMs"`
}

func Success(message string) Notification {
	return Notification{Severity: SeveritySuccess, Message: message, AutoHideMs: DefaultAutoHideMs}
}

func Failure(message string) Notification {
	return Notification{Severity: SeverityError, Message: message, AutoHideMs: DefaultAutoHideMs}
}

func Info(message string) Notification {
	return Notification{Severity: SeverityInfo, Message: message, AutoHideMs: DefaultAutoHideMs}
}
