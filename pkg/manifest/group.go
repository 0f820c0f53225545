package manifest

import (
	"iter"

	"github.com/google/uuid"
)

// SceneNodeGroup is a named selection of scene nodes exported together,
// configured by the rules it carries.
type SceneNodeGroup interface {
	Object
	ID() uuid.UUID
	Name() string
	Rules() *RuleContainer
}

// AdvancedRuleFactory is implemented by groups that know which advanced-rule
// variant they carry.
type AdvancedRuleFactory interface {
	NewAdvancedRule() VertexColorStreamRule
}

// =============================================================================
// RuleContainer
// =============================================================================

// RuleContainer is the ordered list of rules attached to a group.
type RuleContainer struct {
	rules []Rule
}

// Add appends a rule. Nil rules are ignored.
func (c *RuleContainer) Add(r Rule) {
	if r == nil {
		return
	}
	c.rules = append(c.rules, r)
}

// Remove deletes the first occurrence of r and reports whether it was found.
func (c *RuleContainer) Remove(r Rule) bool {
	for i, existing := range c.rules {
		if existing == r {
			c.rules = append(c.rules[:i], c.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of rules.
func (c *RuleContainer) Len() int { return len(c.rules) }

// At returns the rule at index i.
func (c *RuleContainer) At(i int) Rule { return c.rules[i] }

// All yields the rules in order.
func (c *RuleContainer) All() iter.Seq2[int, Rule] {
	return func(yield func(int, Rule) bool) {
		for i, r := range c.rules {
			if !yield(i, r) {
				return
			}
		}
	}
}

// FindRule returns the first rule in c of type T.
func FindRule[T Rule](c *RuleContainer) (T, bool) {
	for _, r := range c.rules {
		if t, ok := r.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// =============================================================================
// Groups
// =============================================================================

type groupBase struct {
	GroupID       uuid.UUID     `json:"id"`
	GroupName     string        `json:"name"`
	NodeSelection []string      `json:"node_selection,omitempty"`
	RuleSet       RuleContainer `json:"rules"`
}

func (g *groupBase) ID() uuid.UUID         { return g.GroupID }
func (g *groupBase) Name() string          { return g.GroupName }
func (g *groupBase) Rules() *RuleContainer { return &g.RuleSet }

// MeshGroup exports the selected nodes as a static mesh.
type MeshGroup struct {
	groupBase
}

// NewMeshGroup returns a mesh group with a fresh ID.
func NewMeshGroup(name string, nodes ...string) *MeshGroup {
	return &MeshGroup{groupBase{GroupID: uuid.New(), GroupName: name, NodeSelection: nodes}}
}

func (*MeshGroup) ObjectType() string { return TypeMeshGroup }

// NewAdvancedRule returns a static-mesh advanced rule.
func (*MeshGroup) NewAdvancedRule() VertexColorStreamRule { return NewStaticMeshAdvancedRule() }

// SkinGroup exports the selected nodes as a skinned mesh bound to RootBone.
type SkinGroup struct {
	groupBase
	RootBone string `json:"root_bone,omitempty"`
}

// NewSkinGroup returns a skin group with a fresh ID.
func NewSkinGroup(name, rootBone string, nodes ...string) *SkinGroup {
	return &SkinGroup{
		groupBase: groupBase{GroupID: uuid.New(), GroupName: name, NodeSelection: nodes},
		RootBone:  rootBone,
	}
}

func (*SkinGroup) ObjectType() string { return TypeSkinGroup }

// NewAdvancedRule returns a skin-mesh advanced rule.
func (*SkinGroup) NewAdvancedRule() VertexColorStreamRule { return NewSkinMeshAdvancedRule() }

var (
	_ SceneNodeGroup      = (*MeshGroup)(nil)
	_ SceneNodeGroup      = (*SkinGroup)(nil)
	_ AdvancedRuleFactory = (*MeshGroup)(nil)
	_ AdvancedRuleFactory = (*SkinGroup)(nil)
)
