// Package graph provides the serialization format for solved layouts.
//
// This package defines the wire format used for JSON files, API responses,
// caching and the layout archive. It sits at the boundary between the live
// objects of a layout pass (surfaces, anchor groups, constraints, a solver)
// and plain data.
//
// # Core Types
//
//   - [Layout]: one solved layout of a host
//   - [Frame]: a solved rectangle (host, anchor group or surface)
//   - [Edge]: one constraint, kept for inspection and graph rendering
//
// # Capturing a Layout
//
// After a container update, read the solved geometry back:
//
//	snap, _ := c.Update(ctx)
//	layout := graph.FromSnapshot(root, snap, s)
//
// # Serialization
//
//	data, _ := graph.MarshalLayout(layout)
//	layout, err := graph.UnmarshalLayout(data)
//	graph.WriteLayoutFile(layout, "card.json")
//
// A serialized layout looks like:
//
//	{
//	  "id": "6f1c...",
//	  "width": 320,
//	  "height": 480,
//	  "frames": [
//	    {"id": "window", "kind": "host", "x": 0, "y": 0, "width": 320, "height": 480},
//	    {"id": "title", "kind": "surface", "x": 0, "y": 0, "width": 320, "height": 44}
//	  ],
//	  "constraints": [
//	    {"from": "title", "to": "root", "relation": "==", "priority": 1000, "expr": "title.top == root.top @1000"}
//	  ]
//	}
//
// Layout carries bson tags as well so the same value can be archived in a
// document store with the layout ID as the primary key.
package graph
