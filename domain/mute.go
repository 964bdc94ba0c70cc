package domain

// Mute identifies a member muted in a given channel.
type Mute struct {
	ChannelID string
	MemberID  string
}
