package condition

// Spec is the serialized form of a condition as it appears in graph files.
// It is resolved against named queries by the registry package.
type Spec struct {
	Type  string `json:"type" yaml:"type" mapstructure:"type"`
	Query string `json:"query" yaml:"query" mapstructure:"query"`
	Op    string `json:"op,omitempty" yaml:"op,omitempty" mapstructure:"op"`
	Value any    `json:"value" yaml:"value" mapstructure:"value"`
}

// Spec types.
const (
	TypeInt   = "int"
	TypeFloat = "float"
	TypeBool  = "bool"
)

// LockSpec is the serialized form of a Lock.
type LockSpec struct {
	Mode       string `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	Conditions []Spec `json:"conditions,omitempty" yaml:"conditions,omitempty" mapstructure:"conditions"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
}
