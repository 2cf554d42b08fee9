package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/pkg/domain"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix <operation> <matrix>",
	Short: "Run a matrix operation with narrated steps",
	Long: `Runs one of the named matrix operations. The operation may be given
with or without the matrix_ prefix:

  stepwise matrix determinant "[[1,2],[3,4]]"
  stepwise matrix multiply "[[1,2],[3,4]]" --matrix-b "[[5,6],[7,8]]"
  stepwise matrix rref "[[1,2],[2,4]]"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !strings.HasPrefix(name, "matrix_") {
			name = "matrix_" + name
		}
		op, err := domain.ParseOperation(name)
		if err != nil {
			return err
		}
		matrixB, _ := cmd.Flags().GetString("matrix-b")
		return runAndPrint(cmd, domain.Request{
			Operation:  op,
			Expression: args[1],
			MatrixB:    matrixB,
		})
	},
}

func init() {
	matrixCmd.Flags().String("matrix-b", "", "Right-hand operand for matrix_multiply")
	rootCmd.AddCommand(matrixCmd)
}
