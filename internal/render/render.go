// Package render holds the built-in output renderers. Each renderer serves
// one format name and is registered with the plugin registry at startup;
// front ends look renderers up by format and never depend on the concrete
// types here.
package render

import "github.com/aretw0/stepwise/pkg/ports"

// Builtin returns the renderer set every front end registers by default.
func Builtin() []ports.Renderer {
	return []ports.Renderer{Text{}, JSON{}, Mermaid{}}
}
