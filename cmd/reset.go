package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <student-id>",
	Short: "Erase a student's profile and quiz history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := eng.ResetStudent(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Reset %s\n", args[0])
		return nil
	},
}
