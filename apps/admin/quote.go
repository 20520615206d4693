package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/tutorhub/core/pricing"
	ratesvc "github.com/trezcool/tutorhub/services/rates"
)

func (cli *commandLine) quoteCmd() *cobra.Command {
	var words, pages, currency, typ string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an assignment from a word or page count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			aType, ok := pricing.ParseAssignmentType(typ)
			if !ok {
				return errors.New("--type must be one of: assignment, report")
			}
			table := cli.rateTable(cmd.Context())
			q := pricing.NewQuote(pricing.ParseQuantity(words, pages), table, currency)

			_, _ = fmt.Fprintf(cli.out, "Type:    %s\n", aType)
			_, _ = fmt.Fprintf(cli.out, "Pages:   %d\n", q.Pages)
			_, _ = fmt.Fprintf(cli.out, "Price:   %s %s\n", q.BasePrice.String(), q.BaseCurrency)
			_, _ = fmt.Fprintf(cli.out, "Display: %s\n", q.DisplayText())
			if !q.RatesComplete {
				_, _ = fmt.Fprintln(cli.out, "(exchange rates unavailable: no conversion)")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&words, "words", "", "word count")
	cmd.Flags().StringVar(&pages, "pages", "", "page count; wins over --words")
	cmd.Flags().StringVar(&currency, "currency", "", "display currency (default: base currency)")
	cmd.Flags().StringVar(&typ, "type", string(pricing.TypeAssignment), "assignment | report")
	return cmd
}

// rateTable loads the rates once and waits for the outcome.
func (cli *commandLine) rateTable(ctx context.Context) pricing.RateTable {
	loader := ratesvc.NewLoader(cli.ratesBase, cli.rates, nil, cli.ratesTimeout, cli.logger)
	loader.Start(ctx)
	<-loader.Done()
	table, _ := loader.Current()
	return table
}
