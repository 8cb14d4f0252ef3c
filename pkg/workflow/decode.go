package workflow

import (
	"fmt"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/graph"
	"github.com/mitchellh/mapstructure"
)

func newDecoder(out any) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true, // numeric params arrive as JSON numbers
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
}

// DecodeNodeData converts a free-form map (from JSON, YAML or tool arguments)
// into typed node data. Parameter values of any scalar type become strings.
// An unknown event, action type or mode fails with domain.ErrUnknownVariant.
func DecodeNodeData(raw map[string]any) (domain.NodeData, error) {
	var data domain.NodeData
	dec, err := newDecoder(&data)
	if err != nil {
		return data, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.NodeData{}, fmt.Errorf("invalid node data: %w", err)
	}
	if err := forms.CheckVariant(data); err != nil {
		return domain.NodeData{}, err
	}
	return data, nil
}

// DecodeCandidate converts a free-form map into a connection candidate.
func DecodeCandidate(raw map[string]any) (graph.Candidate, error) {
	var c struct {
		Source       string `mapstructure:"source"`
		Target       string `mapstructure:"target"`
		SourceHandle string `mapstructure:"sourceHandle"`
	}
	dec, err := newDecoder(&c)
	if err != nil {
		return graph.Candidate{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return graph.Candidate{}, fmt.Errorf("invalid connection: %w", err)
	}
	h, err := domain.ParseHandle(c.SourceHandle)
	if err != nil {
		return graph.Candidate{}, err
	}
	return graph.Candidate{Source: c.Source, Target: c.Target, Handle: h}, nil
}
