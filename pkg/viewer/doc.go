// Package viewer defines the model description consumed by the diagram builder.
//
// # Overview
//
// Viewer data is a snapshot of an optimization model: the nested subsystem
// tree, the flat list of point-to-point data connections, the optional driver
// and the design variables and responses it manages. It is produced by an
// external tool and handed to this module as JSON:
//
//	{
//	  "tree": {
//	    "name": "root", "type": "root", "subsystem_type": "group",
//	    "linear_solver": "LN: RUNONCE", "nonlinear_solver": "NL: RUNONCE",
//	    "children": [
//	      {"name": "d1", "subsystem_type": "component", "component_type": "explicit"}
//	    ]
//	  },
//	  "connections_list": [{"src": "d1.y1", "tgt": "d2.y1"}],
//	  "driver": {"name": "Driver", "type": "optimization"},
//	  "design_vars": {"px.x": {}},
//	  "responses": {"obj.obj": {}}
//	}
//
// # Ordering
//
// The order of design variables and responses is significant because it
// determines the order of diagram edges. [Variables] therefore decodes JSON
// objects in document order rather than through a Go map.
//
// # Validation
//
// [Validator] checks raw documents against an embedded JSON Schema before they
// are decoded, so malformed trees are rejected with the offending location.
package viewer
