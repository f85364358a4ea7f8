package models

type ChannelType string

const (
	ChannelTypeChannel ChannelType = "channel"
	ChannelTypeDM      ChannelType = "dm"
)

type Channel struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   ChannelType `json:"type"`
	Avatar string      `json:"avatar,omitempty"`
}

// DisplayName renders "# name" for group channels and the plain name for DMs.
func (c Channel) DisplayName() string {
	if c.Type == ChannelTypeChannel {
		return "# " + c.Name
	}
	return c.Name
}

var groupChannels = []Channel{
	{ID: "general", Name: "general", Type: ChannelTypeChannel},
	{ID: "engineering", Name: "engineering", Type: ChannelTypeChannel},
	{ID: "design", Name: "design", Type: ChannelTypeChannel},
	{ID: "random", Name: "random", Type: ChannelTypeChannel},
}

var directMessages = []Channel{
	{ID: "dm-alex", Name: "Alex Turner", Type: ChannelTypeDM, Avatar: "AT"},
	{ID: "dm-sarah", Name: "Sarah Chen", Type: ChannelTypeDM, Avatar: "SC"},
	{ID: "dm-mike", Name: "Mike Ross", Type: ChannelTypeDM, Avatar: "MR"},
}

// Channels returns the group channels followed by the direct messages.
func Channels() []Channel {
	out := make([]Channel, 0, len(groupChannels)+len(directMessages))
	out = append(out, groupChannels...)
	return append(out, directMessages...)
}

func FindChannel(id string) (Channel, bool) {
	for _, c := range Channels() {
		if c.ID == id {
			return c, true
		}
	}
	return Channel{}, false
}
