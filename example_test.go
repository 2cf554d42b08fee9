package stepwise_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Example runs one differentiation and prints the recorded rewrite trail.
func Example() {
	eng, err := stepwise.New()
	if err != nil {
		log.Fatal(err)
	}

	result, err := eng.Run(context.Background(), domain.Request{
		Operation:  domain.OpDifferentiate,
		Expression: "x**2",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Output)
	for _, node := range result.Graph.Nodes() {
		fmt.Printf("%s: %s -> %s\n", node.Rule, node.Input, node.Output)
	}
	// Output:
	// 2*x
	// power_rule: Derivative(x**2, x) -> 2*x*Derivative(x, x)
	// diff_identity: 2*x*Derivative(x, x) -> 2*x
}
