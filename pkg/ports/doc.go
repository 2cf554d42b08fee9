/*
Package ports defines the driven ports (interfaces) for the Stepwise engine.

These interfaces decouple the core loop from external implementations, allowing
the engine to work with different algebra backends, output renderers, and
result stores.

# Key Interfaces

  - Algebra: Expression parsing, printing, and the symbolic primitives rules build on.
  - Renderer: Turns an EngineResult into a presentable string for one format.
  - Solver: Secondary plugin kind for equation solving.
  - ResultStore: Persists EngineResults for later retrieval (e.g. Redis).
*/
package ports
