package objects

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// GameObject is the highest level interface for game related types.
type GameObject interface {
	Update() error
	Draw(screen *ebiten.Image)
}

type Lifecycle interface {
	// Game flow methods
	Init() error
	Destroy() error
	Update() error
	Draw(screen *ebiten.Image)
}

// Group updates and draws its children in the order they were added.
type Group struct {
	children []GameObject
}

var _ GameObject = &Group{}

func NewGroup(children ...GameObject) *Group {
	return &Group{children: children}
}

func (g *Group) Add(child GameObject) {
	g.children = append(g.children, child)
}

func (g *Group) Children() []GameObject {
	return g.children
}

func (g *Group) Update() error {
	for i, child := range g.children {
		if err := child.Update(); err != nil {
			return fmt.Errorf("failed to update child %d: %w", i, err)
		}
	}
	return nil
}

func (g *Group) Draw(screen *ebiten.Image) {
	for _, child := range g.children {
		child.Draw(screen)
	}
}
