package events

import "strings"

// Event type constants, format: domain.action

// Poll events
const (
	EventTypePollCreated = "poll.created"
	EventTypePollUpdated = "poll.updated"
	EventTypePollDeleted = "poll.deleted"
)

// Vote events. A single type covers insert, update and delete: live views
// recount on any change, so the distinction carries no weight.
const (
	EventTypeVoteChanged = "vote.changed"
)

// Comment events
const (
	EventTypeCommentCreated = "comment.created"
)

// Presence events
const (
	EventTypePresenceSync = "presence.sync"
)

// Notification events emitted by the outbox processor.
const (
	EventTypeEmailDispatch = "email.dispatch"
)

// Aggregate type constants
const (
	AggregateTypePoll     = "poll"
	AggregateTypeVote     = "vote"
	AggregateTypeComment  = "comment"
	AggregateTypePresence = "presence"
	AggregateTypeEmailJob = "email_job"
)

// Redis channel layout. One votes channel and one presence channel per
// poll, plus a poll metadata channel and a global email channel.
const (
	channelPrefix = "channel:poll:"
	EmailChannel  = "channel:email"
)

func PollChannel(pollID string) string {
	return channelPrefix + pollID
}

func VoteChannel(pollID string) string {
	return channelPrefix + pollID + ":votes"
}

func PresenceChannel(pollID string) string {
	return channelPrefix + pollID + ":presence"
}

// AllPollChannels is the pattern a bridge subscribes with to receive every
// poll-scoped event.
const AllPollChannels = channelPrefix + "*"

// PollIDFromChannel extracts the poll id from a poll-scoped channel name.
// The second return reports whether the channel carries vote events.
func PollIDFromChannel(channel string) (pollID string, votes bool, ok bool) {
	rest, found := strings.CutPrefix(channel, channelPrefix)
	if !found || rest == "" {
		return "", false, false
	}
	if id, isVotes := strings.CutSuffix(rest, ":votes"); isVotes {
		return id, true, true
	}
	if id, isPresence := strings.CutSuffix(rest, ":presence"); isPresence {
		return id, false, true
	}
	return rest, false, true
}
