package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// OSMAction mirrors the create/modify/delete action carried on each
// OSM element in the interchange format (original_source's
// xml::Action), distinct from Hecate's own Action above because the
// OSM codec is a thin, out-of-scope external collaborator per
// spec.md §1 and keeps its own small vocabulary.
type OSMAction string

const (
	OSMCreate OSMAction = "create"
	OSMModify OSMAction = "modify"
	OSMDelete OSMAction = "delete"
)

// OSMNode, OSMWay and OSMRelation model the OSM interchange element
// tree. Rather than the reference-cycle object graph the original Rust
// source builds (nodes <-> ways <-> relations via Rc/RefCell), each
// element only ever refers to others by integer id; the OSMTree arena
// below owns the actual storage and adjacency maps, per the REDESIGN
// FLAGS note on cyclic ownership.
type OSMNode struct {
	ID      int64
	Lat     float64
	Lon     float64
	User    string
	UID     int32
	Action  OSMAction
	Version int32
	Tags    map[string]string
	Parents []int64 // way/relation ids referencing this node
}

type OSMWay struct {
	ID      int64
	User    string
	UID     int32
	Action  OSMAction
	Version int32
	Tags    map[string]string
	Nodes   []int64 // ordered child node ids
	Parents []int64 // relation ids referencing this way
}

type OSMRelationMember struct {
	Type string // "node" | "way" | "relation"
	Ref  int64
	Role string
}

type OSMRelation struct {
	ID      int64
	User    string
	UID     int32
	Action  OSMAction
	Version int32
	Tags    map[string]string
	Members []OSMRelationMember
}

// OSMTree is the arena that owns every node/way/relation in one
// interchange document, addressed by integer id rather than pointer,
// so the graph can have arbitrary cross-references without reference
// cycles.
type OSMTree struct {
	Nodes     map[int64]*OSMNode
	Ways      map[int64]*OSMWay
	Relations map[int64]*OSMRelation
}

// NewOSMTree returns an empty arena.
func NewOSMTree() *OSMTree {
	return &OSMTree{
		Nodes:     make(map[int64]*OSMNode),
		Ways:      make(map[int64]*OSMWay),
		Relations: make(map[int64]*OSMRelation),
	}
}

func (t *OSMTree) AddNode(n *OSMNode) { t.Nodes[n.ID] = n }

func (t *OSMTree) AddWay(w *OSMWay) {
	t.Ways[w.ID] = w
	for _, nid := range w.Nodes {
		if n, ok := t.Nodes[nid]; ok {
			n.Parents = append(n.Parents, w.ID)
		}
	}
}

func (t *OSMTree) AddRelation(r *OSMRelation) {
	t.Relations[r.ID] = r
	for _, m := range r.Members {
		if m.Type == "way" {
			if w, ok := t.Ways[m.Ref]; ok {
				w.Parents = append(w.Parents, r.ID)
			}
		}
	}
}

// NodeToFeature converts a single OSM node to a GeoJSON feature,
// mirroring original_source's Node::to_feat.
func (t *OSMTree) NodeToFeature(n *OSMNode) (*FeatureChange, error) {
	if n.Action == "" {
		return nil, fmt.Errorf("node %d: missing or invalid action", n.ID)
	}

	props := make(map[string]interface{}, len(n.Tags))
	for k, v := range n.Tags {
		props[k] = v
	}

	return &FeatureChange{
		Action:     Action(n.Action),
		Geometry:   orb.Point{n.Lon, n.Lat},
		Properties: props,
	}, nil
}

// WayToFeature converts a way to a LineString or, when closed, a
// Polygon feature, mirroring original_source's Way::to_feat.
func (t *OSMTree) WayToFeature(w *OSMWay) (*FeatureChange, error) {
	if w.Action == "" {
		return nil, fmt.Errorf("way %d: missing or invalid action", w.ID)
	}
	if len(w.Nodes) == 0 {
		return nil, fmt.Errorf("way %d: has no nodes", w.ID)
	}

	line := make(orb.LineString, 0, len(w.Nodes))
	for _, nid := range w.Nodes {
		n, ok := t.Nodes[nid]
		if !ok {
			return nil, fmt.Errorf("way %d: references unknown node %d", w.ID, nid)
		}
		line = append(line, orb.Point{n.Lon, n.Lat})
	}

	props := make(map[string]interface{}, len(w.Tags))
	for k, v := range w.Tags {
		props[k] = v
	}

	var geom orb.Geometry = line
	if w.Nodes[0] == w.Nodes[len(w.Nodes)-1] {
		geom = orb.Polygon{orb.Ring(line)}
	}

	return &FeatureChange{
		Action:     Action(w.Action),
		Geometry:   geom,
		Properties: props,
	}, nil
}
