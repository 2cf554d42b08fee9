/*
Package domain contains the core domain models for the Stepwise engine.

It defines the fundamental entities of the step-decomposition machinery: Rules,
StepNodes, the StepGraph with its structural invariants, and the EngineResult
returned from a run. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Rule: A named, prioritized pattern-match + rewrite unit for one operation.
  - Goal: The unit of work a run transforms (expression plus any pending derivative).
  - StepNode: One immutable, explainable rewrite step.
  - StepGraph: The append-only DAG of steps for a single run.
  - EngineResult: The final operation/input/output/graph bundle.
*/
package domain
