package viewer

import "strings"

// Subsystem types used in the tree.
const (
	SubsystemGroup     = "group"
	SubsystemComponent = "component"
)

// Component types used in the tree. Unknown types are passed through to the
// writer style tables unchanged.
const (
	ComponentIndep     = "indep"
	ComponentExplicit  = "explicit"
	ComponentImplicit  = "implicit"
	ComponentExec      = "exec"
	ComponentMetamodel = "metamodel"
)

// Driver types.
const (
	DriverOptimization = "optimization"
	DriverDOE          = "doe"
)

// Data is the complete model description.
type Data struct {
	Tree        *System      `json:"tree"`
	Connections []Connection `json:"connections_list"`
	Driver      *Driver      `json:"driver,omitempty"`
	DesignVars  Variables    `json:"design_vars,omitempty"`
	Responses   Variables    `json:"responses,omitempty"`
}

// System is one node of the subsystem tree.
type System struct {
	Name            string    `json:"name"`
	Type            string    `json:"type,omitempty"`
	SubsystemType   string    `json:"subsystem_type,omitempty"`
	ComponentType   string    `json:"component_type,omitempty"`
	Class           string    `json:"class,omitempty"`
	IsParallel      bool      `json:"is_parallel,omitempty"`
	LinearSolver    string    `json:"linear_solver,omitempty"`
	NonlinearSolver string    `json:"nonlinear_solver,omitempty"`
	Expressions     []string  `json:"expressions,omitempty"`
	Children        []*System `json:"children,omitempty"`
}

// IsGroup reports whether s contains other subsystems.
// Systems without a subsystem type are treated as groups when they have children.
func (s *System) IsGroup() bool {
	if s.SubsystemType != "" {
		return s.SubsystemType == SubsystemGroup
	}
	return len(s.Children) > 0
}

// Child returns the direct child with the given name, or nil.
func (s *System) Child(name string) *System {
	for _, c := range s.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GroupPaths returns the dotted paths of every group below s in
// depth-first order. The root itself is not included.
func (s *System) GroupPaths() []string {
	var paths []string
	var walk func(sys *System, prefix string)
	walk = func(sys *System, prefix string) {
		for _, c := range sys.Children {
			if !c.IsGroup() {
				continue
			}
			p := c.Name
			if prefix != "" {
				p = prefix + "." + c.Name
			}
			paths = append(paths, p)
			walk(c, p)
		}
	}
	walk(s, "")
	return paths
}

// Connection is a data connection between two absolute variable paths.
type Connection struct {
	Src string `json:"src"`
	Tgt string `json:"tgt"`
}

// Valid reports whether both endpoints are present.
func (c Connection) Valid() bool {
	return strings.TrimSpace(c.Src) != "" && strings.TrimSpace(c.Tgt) != ""
}

// Driver describes the optimizer or design-of-experiments driver.
type Driver struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}
