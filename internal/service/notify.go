package service

import (
	"errors"
	"sync"

	"fuelsales/internal/domain"
)

const (
	MsgFillAllFields        = "Please fill in all fields."
	MsgSaleSaved            = "Sale saved successfully"
	MsgSaveFailed           = "Error saving sale"
	MsgSaleDeleted          = "Sale deleted successfully"
	MsgDeleteFailed         = "Error deleting sale"
	MsgFetchSalesFailed     = "Error fetching sales data"
	MsgFetchInventoryFailed = "Error fetching inventory"
	MsgBranchNotFound       = "Branch ID not found"
	MsgBranchLookupFailed   = "Error fetching branch ID"
)

// Notifier shows one transient, dismissible message to the user.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// Inbox collects notifications in order. It is safe for concurrent use.
type Inbox struct {
	mu       sync.Mutex
	messages []string
}

func (i *Inbox) Notify(message string) {
	i.mu.Lock()
	i.messages = append(i.messages, message)
	i.mu.Unlock()
}

func (i *Inbox) Messages() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.messages...)
}

// Describe turns an error into the short message shown for a failed action.
func Describe(action string, err error) string {
	var verr *domain.ValidationError
	var serverErr *domain.ServerError
	switch {
	case errors.As(err, &verr):
		return MsgFillAllFields
	case errors.Is(err, domain.ErrMissingBranch):
		return MsgBranchNotFound
	case errors.Is(err, domain.ErrAuth):
		return action + ": session rejected, please log in again"
	case errors.Is(err, domain.ErrNetwork):
		return action + ": network unavailable"
	case errors.As(err, &serverErr) && serverErr.Message != "":
		return action + ": " + serverErr.Message
	default:
		return action
	}
}
