package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ceap/internal/cpf"
)

var errInvalidCPF = errors.New("one or more CPFs are invalid")

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate CPF...",
		Short: "Check CPF check digits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, id := range args {
				status := "valid"
				if !cpf.Valid(id) {
					status = "invalid"
					invalid++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, status)
			}
			if invalid > 0 {
				return errInvalidCPF
			}
			return nil
		},
	}
}
