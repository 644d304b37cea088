package layer

import (
	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/internal/log"
)

// RootKey is the key of the group node at the top of a map image service tree.
const RootKey = -1

// Node is an entry of a layer tree. Leaves map one to one onto feature classes
// and share their index as key.
type Node struct {
	Key      int     `json:"key"`
	Name     string  `json:"name"`
	Leaf     bool    `json:"leaf"`
	Children []*Node `json:"children,omitempty"`
}

// NewLeaf returns a leaf node.
func NewLeaf(key int, name string) *Node {
	return &Node{Key: key, Name: name, Leaf: true}
}

// NewGroup returns a group node holding children.
func NewGroup(key int, name string, children ...*Node) *Node {
	return &Node{Key: key, Name: name, Children: children}
}

// Walk visits n and its descendants depth first, stopping when fn returns false.
func (n *Node) Walk(fn func(n *Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node with key, or nil.
func (n *Node) Find(key int) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Key == key {
			found = c
			return false
		}
		return true
	})
	return found
}

// Leaves returns the keys of all leaves in walk order.
func (n *Node) Leaves() []int {
	var keys []int
	n.Walk(func(c *Node) bool {
		if c.Leaf {
			keys = append(keys, c.Key)
		}
		return true
	})
	return keys
}

// buildServiceTree arranges a map service's sublayer list under a root group.
// With a non empty whitelist only the listed entries, and the subtrees of listed
// groups, are included. It returns the tree and the leaf entries in tree order.
func buildServiceTree(name string, layers []arcgis.SublayerInfo, whitelist []int) (*Node, []arcgis.SublayerInfo) {
	byID := make(map[int]arcgis.SublayerInfo, len(layers))
	for _, l := range layers {
		byID[l.ID] = l
	}

	var starts []int
	if len(whitelist) == 0 {
		for _, l := range layers {
			if l.ParentLayerID == -1 {
				starts = append(starts, l.ID)
			}
		}
	} else {
		starts = whitelist
	}

	var (
		leaves []arcgis.SublayerInfo
		seen   = map[int]bool{}
		walk   func(id int) *Node
	)
	walk = func(id int) *Node {
		info, ok := byID[id]
		if !ok {
			log.Warnf("layer: service %q has no sublayer %v", name, id)
			return nil
		}
		if seen[id] {
			return nil
		}
		seen[id] = true

		if !info.IsGroup() {
			leaves = append(leaves, info)
			return NewLeaf(info.ID, info.Name)
		}
		group := NewGroup(info.ID, info.Name)
		for _, child := range info.SubLayerIDs {
			if n := walk(child); n != nil {
				group.Children = append(group.Children, n)
			}
		}
		return group
	}

	root := NewGroup(RootKey, name)
	for _, id := range starts {
		if n := walk(id); n != nil {
			root.Children = append(root.Children, n)
		}
	}
	return root, leaves
}
