package enginetest

import "github.com/cbodonnell/galplayer/pkg/display"

// Surface keeps attached nodes per layer in attach order.
type Surface struct {
	Nodes map[display.Layer][]*display.Node
}

func NewSurface() *Surface {
	return &Surface{Nodes: make(map[display.Layer][]*display.Node)}
}

func (s *Surface) Attach(layer display.Layer, node *display.Node) {
	s.Nodes[layer] = append(s.Nodes[layer], node)
}

func (s *Surface) Detach(layer display.Layer, node *display.Node) {
	nodes := s.Nodes[layer]
	for i, n := range nodes {
		if n == node {
			s.Nodes[layer] = append(nodes[:i], nodes[i+1:]...)
			return
		}
	}
}

// Paths returns the texture paths attached to layer, in order.
func (s *Surface) Paths(layer display.Layer) []string {
	var paths []string
	for _, n := range s.Nodes[layer] {
		paths = append(paths, n.Ref.Path)
	}
	return paths
}
