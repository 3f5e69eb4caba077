package domain

// SpeechVariation is one alternative line for a speech. One is picked at random on entry.
type SpeechVariation struct {
	Text  string `json:"text" yaml:"text" mapstructure:"text"`
	Audio string `json:"audio,omitempty" yaml:"audio,omitempty" mapstructure:"audio"`
}

// Gesture asks the speaker bound to Role to play an animation tag with the given probability.
// An empty Role means the speech's own speaker.
type Gesture struct {
	Role   string  `json:"role,omitempty" yaml:"role,omitempty" mapstructure:"role"`
	Tag    string  `json:"tag" yaml:"tag" mapstructure:"tag"`
	Chance float64 `json:"chance" yaml:"chance" mapstructure:"chance"`
}

// AttributeRequirement is an attribute check shown next to an option (e.g. "Charisma 5").
// The core only carries it to the presentation layer.
type AttributeRequirement struct {
	Attribute string `json:"attribute" yaml:"attribute" mapstructure:"attribute"`
	Minimum   int    `json:"minimum" yaml:"minimum" mapstructure:"minimum"`
}

// SpeechDetails is the content bundle of a speech node.
type SpeechDetails struct {
	Title      string            `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Role       string            `json:"role" yaml:"role" mapstructure:"role"`
	Variations []SpeechVariation `json:"variations,omitempty" yaml:"variations,omitempty" mapstructure:"variations"`

	// MinimumPlayTime in seconds. Advisory metadata for the presentation layer.
	MinimumPlayTime float64 `json:"minimum_play_time,omitempty" yaml:"minimum_play_time,omitempty" mapstructure:"minimum_play_time"`

	CanSkip       bool     `json:"can_skip" yaml:"can_skip" mapstructure:"can_skip"`
	IgnoreContent bool     `json:"ignore_content,omitempty" yaml:"ignore_content,omitempty" mapstructure:"ignore_content"`
	GameplayTags  []string `json:"gameplay_tags,omitempty" yaml:"gameplay_tags,omitempty" mapstructure:"gameplay_tags"`

	Gestures     []Gesture              `json:"gestures,omitempty" yaml:"gestures,omitempty" mapstructure:"gestures"`
	Requirements []AttributeRequirement `json:"requirements,omitempty" yaml:"requirements,omitempty" mapstructure:"requirements"`
}

// HasContent reports whether entering the speech should display anything.
func (d *SpeechDetails) HasContent() bool {
	return d != nil && !d.IgnoreContent && len(d.Variations) > 0
}

// Option is one entry of a choice menu.
type Option struct {
	Details SpeechDetails `json:"details"`
	// Node is the child entered when the option is selected.
	Node NodeID `json:"node"`
	// Locked options are displayed but cannot be selected.
	Locked bool `json:"locked,omitempty"`
	// Message is an optional reason shown next to a locked option.
	Message string `json:"message,omitempty"`
}
