package compiler

import (
	"fmt"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/dsl"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser is responsible for converting raw graph files into editable graphs.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML or JSON graph. Unknown keys are rejected so typos in
// hand-written files surface here instead of as silently missing behaviour.
func (p *Parser) Parse(data []byte) (*dsl.Graph, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse graph: empty document")
	}

	var g dsl.Graph
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &g,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}

	if g.ID == "" {
		return nil, fmt.Errorf("graph missing ID")
	}
	if len(g.Roles) == 0 {
		g.Roles = dsl.NewGraph(g.ID).Roles
	}
	// Hand-written speeches advance on their own unless told otherwise, as with the builder.
	for _, n := range g.Nodes {
		if n != nil && n.Kind == domain.KindSpeech && n.Transition == "" {
			n.Transition = domain.TransitionAuto
		}
	}
	return &g, nil
}

// Marshal encodes g as YAML, the format Parse reads back.
func (p *Parser) Marshal(g *dsl.Graph) ([]byte, error) {
	return yaml.Marshal(g)
}
