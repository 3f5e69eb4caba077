package loam

// GraphDocument is the data section of a graph document: the whole file for YAML or JSON,
// the frontmatter for Markdown. A Markdown body holds authoring notes and is ignored.
//
// Nodes stay undecoded so the compiler's parser validates them with the same rules it
// applies to plain graph files.
type GraphDocument struct {
	ID                  string   `json:"id" mapstructure:"id"`
	Roles               []string `json:"roles" mapstructure:"roles"`
	GenericSpeakerNames bool     `json:"generic_speaker_names" mapstructure:"generic_speaker_names"`
	Nodes               []any    `json:"nodes" mapstructure:"nodes"`
}
