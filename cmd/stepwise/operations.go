package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/pkg/domain"
)

var differentiateCmd = &cobra.Command{
	Use:     "differentiate <expression>",
	Aliases: []string{"diff"},
	Short:   "Differentiate an expression step by step",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variable, _ := cmd.Flags().GetString("variable")
		order, _ := cmd.Flags().GetInt("order")
		return runAndPrint(cmd, domain.Request{
			Operation:  domain.OpDifferentiate,
			Expression: args[0],
			Variable:   variable,
			Order:      order,
		})
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand <expression>",
	Short: "Expand a product or power into a sum of terms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint(cmd, domain.Request{
			Operation:  domain.OpExpand,
			Expression: args[0],
		})
	},
}

var factorCmd = &cobra.Command{
	Use:   "factor <expression>",
	Short: "Factor an expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint(cmd, domain.Request{
			Operation:  domain.OpFactor,
			Expression: args[0],
		})
	},
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify <expression>",
	Short: "Simplify an expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndPrint(cmd, domain.Request{
			Operation:  domain.OpSimplify,
			Expression: args[0],
		})
	},
}

func init() {
	differentiateCmd.Flags().StringP("variable", "v", "x", "Variable to differentiate by")
	differentiateCmd.Flags().IntP("order", "n", 1, "Derivative order (1 to 10)")
	rootCmd.AddCommand(differentiateCmd, expandCmd, factorCmd, simplifyCmd)
}
