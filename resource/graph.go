package resource

// DependencyLister is implemented by payloads that reference other
// resources. The dependency graph builder uses it to find nested
// handles; payloads without resource references simply do not
// implement it.
type DependencyLister interface {
	ResourceDependencies() []*Handle
}

// DependencyNode is one resource in a dependency snapshot. The tree is
// built once and owned by the caller, it does not track later state
// changes of the resources it was built from.
type DependencyNode struct {
	Identity Identity
	Status   Status
	Type     string
	Children []*DependencyNode
}

// BuildDependencyGraph walks the loaded payload of root and its nested
// resource references into a snapshot tree. Identities already visited
// on the way down are recorded as leaves, so a reference cycle cannot
// recurse forever. The resources themselves are only read.
func BuildDependencyGraph(root *Handle) *DependencyNode {
	visited := make(map[Identity]bool)
	return buildNode(root, visited)
}

func buildNode(handle *Handle, visited map[Identity]bool) *DependencyNode {
	node := &DependencyNode{
		Identity: handle.Identity(),
		Status:   handle.Status(),
		Type:     handle.TypeName(),
	}
	if visited[node.Identity] {
		return node
	}
	visited[node.Identity] = true

	payload, err := handle.Payload()
	if err != nil {
		return node
	}
	lister, ok := payload.(DependencyLister)
	if !ok {
		return node
	}
	for _, child := range lister.ResourceDependencies() {
		if child == nil {
			continue
		}
		node.Children = append(node.Children, buildNode(child, visited))
	}
	return node
}
