package behavior

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/observability"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// Repair describes one stale stream name that was replaced.
type Repair struct {
	Group   string `json:"group,omitempty"`
	Rule    string `json:"rule"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// Option configures a [VertexColor].
type Option func(*VertexColor)

// WithRepairFunc registers fn to be called for every repaired rule.
func WithRepairFunc(fn func(Repair)) Option {
	return func(v *VertexColor) { v.onRepair = fn }
}

// VertexColor assigns and repairs vertex-color stream names on advanced mesh
// rules. It holds no per-scene state, so one instance can serve many scenes
// as long as each callback runs to completion before the next begins.
type VertexColor struct {
	logger   *log.Logger
	onRepair func(Repair)
}

// NewVertexColor creates the behavior. A nil logger discards output.
func NewVertexColor(logger *log.Logger, opts ...Option) *VertexColor {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	v := &VertexColor{logger: logger}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Activate connects the behavior to b.
func (v *VertexColor) Activate(b *events.Bus) {
	b.ConnectMetaInfo(v)
	b.ConnectImportRequest(v)
}

// Deactivate disconnects the behavior from b.
func (v *VertexColor) Deactivate(b *events.Bus) {
	b.DisconnectImportRequest(v)
	b.DisconnectMetaInfo(v)
}

// FirstVertexColorStream returns the name of the first node, in storage
// order, whose content carries vertex colors. It returns "" when the graph
// has none.
func FirstVertexColorStream(g *scene.Graph) string {
	if g == nil {
		return ""
	}
	for i, c := range g.Contents() {
		if scene.IsVertexColor(c) {
			return g.Name(i)
		}
	}
	return ""
}

// InitializeObject sets the initial stream name on a newly created object.
//
// Groups that know their advanced-rule variant receive a new rule when the
// graph has a vertex-color stream; groups that already carry one are left
// alone. Stand-alone rules are set to the first stream or the disabled
// sentinel. Any other object is ignored.
func (v *VertexColor) InitializeObject(s *scene.Scene, target manifest.Object) {
	if s == nil || target == nil {
		return
	}

	if group, ok := target.(manifest.SceneNodeGroup); ok {
		factory, ok := target.(manifest.AdvancedRuleFactory)
		if !ok {
			return
		}
		if _, exists := manifest.FindRule[manifest.VertexColorStreamRule](group.Rules()); exists {
			return
		}
		stream := FirstVertexColorStream(s.Graph)
		if stream == "" {
			return
		}
		rule := factory.NewAdvancedRule()
		rule.SetVertexColorStreamName(stream)
		group.Rules().Add(rule)
		v.logger.Debug("attached advanced rule", "group", group.Name(), "rule", rule.ObjectType(), "stream", stream)
		observability.Behavior().OnObjectInitialized(target.ObjectType())
		return
	}

	if rule, ok := target.(manifest.VertexColorStreamRule); ok {
		stream := orDisabled(FirstVertexColorStream(s.Graph))
		rule.SetVertexColorStreamName(stream)
		v.logger.Debug("initialized rule", "rule", rule.ObjectType(), "stream", stream)
		observability.Behavior().OnObjectInitialized(target.ObjectType())
	}
}

// UpdateManifest revalidates every vertex-color rule in the scene's manifest
// when action is [events.Update]. Any other action is reported as Ignored.
// An update of a scene without a manifest checks nothing and succeeds.
func (v *VertexColor) UpdateManifest(s *scene.Scene, action events.ManifestAction, requester events.RequestingApplication) events.ProcessingResult {
	if action != events.Update {
		return events.Ignored
	}

	start := time.Now()
	checked := 0
	if s != nil && s.Manifest != nil {
		checked = v.UpdateRules(s)
	}
	v.logger.Debug("validated vertex color streams", "rules", checked, "requester", requester)
	observability.Behavior().OnManifestUpdate(action.String(), events.Success.String(), checked, time.Since(start))
	return events.Success
}

// UpdateRules validates every vertex-color rule of every group and returns
// how many rules were checked.
func (v *VertexColor) UpdateRules(s *scene.Scene) int {
	checked := 0
	for group, rule := range s.Manifest.VertexColorRules() {
		checked++
		v.validate(s.Graph, rule, group.Name())
	}
	return checked
}

// ValidateRule checks that the rule's stream name still names a node in g and
// replaces it with the current first stream when it does not. It reports the
// replacement, if any. Rules holding the disabled sentinel are skipped.
func (v *VertexColor) ValidateRule(g *scene.Graph, rule manifest.VertexColorStreamRule) (Repair, bool) {
	return v.validate(g, rule, "")
}

func (v *VertexColor) validate(g *scene.Graph, rule manifest.VertexColorStreamRule, group string) (Repair, bool) {
	if rule == nil {
		return Repair{}, false
	}
	current := rule.VertexColorStreamName()
	if current == manifest.DisabledStream || hasNode(g, current) {
		return Repair{}, false
	}

	resolved := FirstVertexColorStream(g)
	v.logger.Warn("old vertex color stream name not found, renamed",
		"group", group, "old", current, "new", resolved)

	rule.SetVertexColorStreamName(orDisabled(resolved))

	r := Repair{Group: group, Rule: rule.ObjectType(), OldName: current, NewName: rule.VertexColorStreamName()}
	observability.Behavior().OnStreamRepaired(group, r.OldName, r.NewName)
	if v.onRepair != nil {
		v.onRepair(r)
	}
	return r, true
}

// hasNode scans the graph's name table for an exact, case-sensitive match.
func hasNode(g *scene.Graph, name string) bool {
	if g == nil {
		return false
	}
	for _, n := range g.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func orDisabled(stream string) string {
	if stream == "" {
		return manifest.DisabledStream
	}
	return stream
}

var (
	_ events.Behavior                  = (*VertexColor)(nil)
	_ events.ManifestMetaInfoHandler   = (*VertexColor)(nil)
	_ events.AssetImportRequestHandler = (*VertexColor)(nil)
)
