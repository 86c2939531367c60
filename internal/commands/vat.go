package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/money"
	"github.com/locatio-dev/locatio/internal/vat"
)

func newVATCommand() *cobra.Command {
	var rate string

	cmd := &cobra.Command{
		Use:   "vat",
		Short: "VAT calculator",
	}
	cmd.PersistentFlags().StringVar(&rate, "rate", "20", "VAT rate in percent")

	compute := func(use, short string, fn func(amount, rate decimal.Decimal) vat.Result) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <amount>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := money.Parse(args[0])
				if err != nil {
					return err
				}
				r, err := money.Parse(rate)
				if err != nil {
					return fmt.Errorf("--rate: %w", err)
				}
				if err := vat.CheckRate(r); err != nil {
					return err
				}
				res := fn(amount, r)
				fmt.Fprintf(cmd.OutOrStdout(), "HT   %s\nTVA  %s\nTTC  %s\n",
					money.Format(res.HT), money.Format(res.TVA), money.Format(res.TTC))
				return nil
			},
		}
	}

	cmd.AddCommand(
		compute("ht", "Split an amount excluding VAT", vat.ComputeFromHT),
		compute("ttc", "Split an amount including VAT", vat.ComputeFromTTC),
		newVATCheckCommand(&rate),
	)
	return cmd
}

func newVATCheckCommand(rate *string) *cobra.Command {
	var ht, tva, ttc string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that HT, TVA and TTC agree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in vat.Input
			var err error
			if in.Rate, err = optionalAmount("--rate", *rate); err != nil {
				return err
			}
			if in.HT, err = optionalAmount("--ht", ht); err != nil {
				return err
			}
			if in.TVA, err = optionalAmount("--tva", tva); err != nil {
				return err
			}
			if in.TTC, err = optionalAmount("--ttc", ttc); err != nil {
				return err
			}
			if err := vat.Validate(true, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&ht, "ht", "", "amount excluding VAT")
	cmd.Flags().StringVar(&tva, "tva", "", "VAT amount")
	cmd.Flags().StringVar(&ttc, "ttc", "", "amount including VAT")
	return cmd
}
