// Package notify fans one stored Event out to every tracking user,
// decides per user whether to notify, and dispatches the rendered
// message.
package notify

import "prpulse/internal/ports"

type Service struct {
	users         ports.UserRepository
	notifications ports.NotificationRepository
	events        ports.EventRepository
	matcher       ports.ProfileMatcher
	dispatcher    *Dispatcher
}

func NewService(
	users ports.UserRepository,
	notifications ports.NotificationRepository,
	events ports.EventRepository,
	matcher ports.ProfileMatcher,
	dispatcher *Dispatcher,
) *Service {
	return &Service{
		users:         users,
		notifications: notifications,
		events:        events,
		matcher:       matcher,
		dispatcher:    dispatcher,
	}
}

// Decision is the outcome of evaluating one (user, event) pair.
type Decision struct {
	ShouldNotify bool
	Reason       string
	Context      string
	// ChannelID routes the message to a channel; empty means DM.
	ChannelID string
}

// ProcessResult summarizes one event fan-out.
type ProcessResult struct {
	AlreadyProcessed bool
	Users            int
	Notified         int
	Skipped          int
	Errors           int
}
