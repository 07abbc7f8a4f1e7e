package observers

// NewDefaultLoggingObserver creates a logging observer with default
// settings (LogInfo level, "StateMachine" prefix).
func NewDefaultLoggingObserver[C any]() *LoggingObserver[C] {
	return NewLoggingObserver[C](LogInfo, "StateMachine")
}
