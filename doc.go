/*
Package stepwise is a rule-based step-decomposition engine for symbolic
mathematics. It turns a request to transform an expression (differentiate,
expand, factor, simplify, or a named matrix operation) into a deterministic,
auditable DAG of explainable rewrite steps.

# Concept

The engine never computes mathematics itself. A plugin registry holds named,
prioritized rules; each run repeatedly selects the highest-priority rule
matching the current goal, applies it, and records the rewrite as one
validated node in a step graph. Algebraic operations iterate to a fixpoint;
matrix operations run a single structured rule that narrates its whole
algorithm as a batch of nodes. The algebra backend behind the rules performs
the actual tree surgery.

# Key Properties

  - Deterministic: identical requests against an unchanged registry produce
    byte-identical step graphs.
  - Bounded: the iterative loop stops after a configurable number of steps
    regardless of the rule catalog.
  - Validated: every recorded node passes uniqueness, dependency and
    acyclicity checks; a violation is attributed to the offending rule.
  - Explainable: every node carries concise, detailed and teacher-level
    narration for the renderers.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/stepwise"
		"github.com/aretw0/stepwise/pkg/domain"
	)

	func main() {
		eng, err := stepwise.New()
		if err != nil {
			log.Fatal(err)
		}

		result, err := eng.Run(context.Background(), domain.Request{
			Operation:  domain.OpDifferentiate,
			Expression: "sin(x**2)",
		})
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(result.Output)
		for _, node := range result.Graph.Nodes() {
			fmt.Printf("%s: %s -> %s\n", node.Rule, node.Input, node.Output)
		}
	}

Front ends live under cmd/stepwise (CLI) and internal/adapters (HTTP, MCP);
they all go through the same Engine.Run entry point.
*/
package stepwise
