package layout

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexcrawl/internal/hex"
)

// Cells is a coordinate list written as a flow sequence of "q,r" strings,
// which keeps room entries to a few lines.
type Cells []hex.Coord

// MarshalYAML implements yaml.Marshaler.
func (c Cells) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: make([]*yaml.Node, 0, len(c))}
	for _, coord := range c {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.DoubleQuotedStyle,
			Tag:   "!!str",
			Value: coord.String(),
		})
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Cells) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: cells must be a sequence", value.Line)
	}
	out := make(Cells, 0, len(value.Content))
	for _, n := range value.Content {
		coord, err := hex.Parse(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		out = append(out, coord)
	}
	*c = out
	return nil
}
