// Package renderer paints a document, its scope markers and a status line
// onto a backend.
//
// The renderer follows a layered design:
//
//	┌─────────────────────────────────────────┐
//	│        Renderer (gutter, status)        │
//	├─────────────────────────────────────────┤
//	│  Viewport      │  overlay.Manager spans │
//	├─────────────────────────────────────────┤
//	│           Backend Abstraction           │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ NullBackend (tests) │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, markers, renderer.DefaultOptions())
//	r.Render(doc, renderer.Cursor{Line: 1}, "status")
package renderer
