package provider

import "context"

// Action is the logical send variant. Each action has its own request
// builder and response interpreter against the unified messaging provider.
type Action string

const (
	ActionWhatsappMessage Action = "whatsapp_message"
	ActionLinkedinDM      Action = "linkedin_dm"
	ActionLinkedinInMail  Action = "linkedin_inmail"
	ActionLinkedinInvite  Action = "linkedin_invite"
)

// Error classes reported on failed sends. Validation failures are terminal
// (retrying cannot fix missing data); the rest are retryable.
const (
	ErrClassValidation           = "validation"
	ErrClassProfileNotResolvable = "profile_not_resolvable"
	ErrClassProviderError        = "provider_error"
)

// InviteNoteMaxLen is the provider's cap on the connection note; enforced
// before the request is built, not after a rejection.
const InviteNoteMaxLen = 300

type SendRequest struct {
	AccountID string
	Action    Action
	Recipient string
	Text      string
}

type SendResult struct {
	Success           bool
	ProviderMessageID string
	ErrorClass        string
	ErrorDetail       string
}

// Terminal reports whether retrying this failure is pointless.
func (r *SendResult) Terminal() bool {
	return !r.Success && r.ErrorClass == ErrClassValidation
}

// Dispatcher adapts a logical send into provider wire calls. Failures come
// back in the result, never as a Go error, so one bad lead cannot abort a
// batch.
type Dispatcher interface {
	Send(ctx context.Context, req SendRequest) *SendResult
}

func failure(class, detail string) *SendResult {
	return &SendResult{Success: false, ErrorClass: class, ErrorDetail: detail}
}
