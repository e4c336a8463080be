// Package io provides JSON backup and restore for a store.
//
// # Format
//
// A backup is a single JSON object:
//
//	{
//	  "version": 1,
//	  "exported_at": "2026-01-08T21:00:00+08:00",
//	  "days": {
//	    "2026.01.07": {"Night sleep": 480, "Work": 540}
//	  },
//	  "categories": ["Night sleep", "Work"],
//	  "tasks": [
//	    {"id": "...", "text": "ship it", "quadrant": "Q1",
//	     "completed": false, "created_at": "2026-01-07T09:30:00+08:00"}
//	  ]
//	}
//
// The "days" object has the same shape as the energy_data.json file of the file
// store, so a bare days file can be imported as well. Minutes are integers
// and each day keeps its category order.
//
// # Export and import
//
// [Snapshot] and [ExportJSON] read a store; [ReadJSON] and [ImportJSON]
// decode a file; [Restore] applies a decoded backup to a store.
package io
