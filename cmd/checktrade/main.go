// checktrade проверяет обмен офлайн: читает инвентарь бота и обе стороны
// оффера из JSON-файлов и печатает решение оценщика.
//
//	go run ./cmd/checktrade --give give.json --receive receive.json [--inventory inv.json] [--format json]
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/fairness"
	"trade_exchange/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	formatText = "text"
	formatJSON = "json"
)

type options struct {
	inventory string
	give      string
	receive   string
	format    string
}

// verdict печатается в формате json. NeutralOrBetter пуст без инвентаря.
type verdict struct {
	FairExchange    bool  `json:"fairExchange"`
	NeutralOrBetter *bool `json:"neutralOrBetter,omitempty"`
}

func main() {
	log := logx.NewConsoleLogger(os.Stderr, slog.LevelInfo)

	if err := newRootCommand().Execute(); err != nil {
		log.Error("checktrade failed", logx.Error(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "checktrade",
		Short:         "Evaluate a trade offer against a bot inventory offline",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains([]string{formatText, formatJSON}, opts.format) {
				return fmt.Errorf("invalid format %q", opts.format)
			}

			return run(cmd.OutOrStdout(), *opts)
		},
	}

	cmd.Flags().StringVar(&opts.inventory, "inventory", "", "inventory json (optional)")
	cmd.Flags().StringVar(&opts.give, "give", "", "items to give json")
	cmd.Flags().StringVar(&opts.receive, "receive", "", "items to receive json")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format (text|json)")

	return cmd
}

func run(w io.Writer, opts options) error {
	give, err := readItems(opts.give)
	if err != nil {
		return fmt.Errorf("give: %w", err)
	}

	receive, err := readItems(opts.receive)
	if err != nil {
		return fmt.Errorf("receive: %w", err)
	}

	var v verdict

	v.FairExchange, err = fairness.IsFairExchange(give, receive)
	if err != nil {
		return fmt.Errorf("fairness.IsFairExchange: %w", err)
	}

	if opts.inventory != "" {
		inventory, err := readItems(opts.inventory)
		if err != nil {
			return fmt.Errorf("inventory: %w", err)
		}

		neutral, err := fairness.IsNeutralOrBetter(inventory, give, receive)
		if err != nil {
			return fmt.Errorf("fairness.IsNeutralOrBetter: %w", err)
		}

		v.NeutralOrBetter = &neutral
	}

	if opts.format == formatJSON {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("json.Encode: %w", err)
		}

		return nil
	}

	fmt.Fprintf(w, "fair exchange:      %t\n", v.FairExchange)

	if v.NeutralOrBetter != nil {
		fmt.Fprintf(w, "neutral or better:  %t\n", *v.NeutralOrBetter)
	}

	return nil
}

func readItems(path string) ([]entity.Item, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var items []entity.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return items, nil
}
