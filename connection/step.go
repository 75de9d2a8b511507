package connection

// Connection attempt step names, reported when a multi-step exchange fails.
const (
	StepCodeExchange     = "code_exchange"
	StepTokenUpgrade     = "token_upgrade"
	StepAccountDiscovery = "account_discovery"
	StepProfileFetch     = "profile_fetch"
	StepChannelFetch     = "channel_fetch"
	StepStore            = "store"
)

// StepError marks which step of a connection attempt failed. Any step
// failing aborts the whole attempt; nothing is persisted before the final
// store step, so a StepError never implies partial writes.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

// FailStep wraps err with the step it occurred in.
func FailStep(step string, err error) error {
	return &StepError{Step: step, Err: err}
}
