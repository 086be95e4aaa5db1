// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command balancer runs one vault operation against a pool snapshot
// stored as JSON and prints the result.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/joho/godotenv"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/luxfi/balancer/core"
	"github.com/luxfi/balancer/vault"
)

// Environment fallbacks for the snapshot flags. A .env file in the
// working directory is read first when present.
const (
	envPool = "BALANCER_POOL"
	envHook = "BALANCER_HOOK"
)

type options struct {
	pool     string
	hook     string
	verbose  bool
	decimals int32
}

func (o *options) vault() *vault.Vault {
	level := log.InfoLevel
	if o.verbose {
		level = log.DebugLevel
	}
	return vault.New(vault.WithLogger(log.NewTestLogger(level)))
}

func (o *options) load() (core.PoolState, core.HookState, error) {
	if o.pool == "" {
		return nil, nil, fmt.Errorf("%w: --pool or %s is required", core.ErrInvalidInput, envPool)
	}
	pool, err := loadPool(o.pool)
	if err != nil {
		return nil, nil, err
	}
	hook, err := loadHook(o.hook)
	if err != nil {
		return nil, nil, err
	}
	return pool, hook, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "balancer",
		Short:         "Balancer v3 pool maths",
		Long:          `Price swaps and liquidity changes against a JSON pool snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.pool, "pool", os.Getenv(envPool), "pool snapshot JSON file")
	root.PersistentFlags().StringVar(&opts.hook, "hook", os.Getenv(envHook), "hook snapshot JSON file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log each operation")
	root.PersistentFlags().Int32Var(&opts.decimals, "decimals", 0, "also print amounts shifted by this many decimals")

	root.AddCommand(newSwapCmd(opts), newAddCmd(opts), newRemoveCmd(opts))
	return root
}

func newSwapCmd(opts *options) *cobra.Command {
	var (
		kind, tokenIn, tokenOut, amountRaw string
	)
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Price a swap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			swapKind, err := parseSwapKind(kind)
			if err != nil {
				return err
			}
			amt, err := parseAmount(amountRaw)
			if err != nil {
				return err
			}
			pool, hook, err := opts.load()
			if err != nil {
				return err
			}
			out, err := opts.vault().Swap(&core.SwapInput{
				AmountRaw: amt,
				SwapKind:  swapKind,
				TokenIn:   common.HexToAddress(tokenIn),
				TokenOut:  common.HexToAddress(tokenOut),
			}, pool, hook)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.decimals, map[string]any{
				"amountCalculatedRaw": out,
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "in", "given side: in or out")
	cmd.Flags().StringVar(&tokenIn, "token-in", "", "token sold")
	cmd.Flags().StringVar(&tokenOut, "token-out", "", "token bought")
	cmd.Flags().StringVar(&amountRaw, "amount", "", "raw amount of the given side")
	_ = cmd.MarkFlagRequired("token-in")
	_ = cmd.MarkFlagRequired("token-out")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	var (
		kind      string
		maxIn     []string
		minBptOut string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Price a liquidity deposit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addKind, err := parseAddKind(kind)
			if err != nil {
				return err
			}
			maxAmounts, err := parseAmounts(maxIn)
			if err != nil {
				return err
			}
			bpt, err := parseAmount(minBptOut)
			if err != nil {
				return err
			}
			pool, hook, err := opts.load()
			if err != nil {
				return err
			}
			res, err := opts.vault().AddLiquidity(&core.AddLiquidityInput{
				Pool:               pool.Base().PoolAddress,
				MaxAmountsInRaw:    maxAmounts,
				MinBptAmountOutRaw: bpt,
				Kind:               addKind,
			}, pool, hook)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.decimals, map[string]any{
				"bptAmountOutRaw": res.BptAmountOutRaw,
				"amountsInRaw":    res.AmountsInRaw,
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "unbalanced", "unbalanced or single-token-exact-out")
	cmd.Flags().StringSliceVar(&maxIn, "max-amounts-in", nil, "raw max amount per token, comma separated")
	cmd.Flags().StringVar(&minBptOut, "min-bpt-out", "0", "BPT to mint for single-token-exact-out")
	_ = cmd.MarkFlagRequired("max-amounts-in")
	return cmd
}

func newRemoveCmd(opts *options) *cobra.Command {
	var (
		kind     string
		minOut   []string
		maxBptIn string
	)
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Price a liquidity withdrawal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			removeKind, err := parseRemoveKind(kind)
			if err != nil {
				return err
			}
			minAmounts, err := parseAmounts(minOut)
			if err != nil {
				return err
			}
			bpt, err := parseAmount(maxBptIn)
			if err != nil {
				return err
			}
			pool, hook, err := opts.load()
			if err != nil {
				return err
			}
			res, err := opts.vault().RemoveLiquidity(&core.RemoveLiquidityInput{
				Pool:              pool.Base().PoolAddress,
				MinAmountsOutRaw:  minAmounts,
				MaxBptAmountInRaw: bpt,
				Kind:              removeKind,
			}, pool, hook)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.decimals, map[string]any{
				"bptAmountInRaw": res.BptAmountInRaw,
				"amountsOutRaw":  res.AmountsOutRaw,
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "proportional", "proportional, single-token-exact-in or single-token-exact-out")
	cmd.Flags().StringSliceVar(&minOut, "min-amounts-out", nil, "raw min amount per token, comma separated")
	cmd.Flags().StringVar(&maxBptIn, "max-bpt-in", "0", "BPT to burn for proportional and single-token-exact-in")
	_ = cmd.MarkFlagRequired("min-amounts-out")
	return cmd
}

func parseSwapKind(s string) (core.SwapKind, error) {
	switch s {
	case "in", "given-in":
		return core.GivenIn, nil
	case "out", "given-out":
		return core.GivenOut, nil
	}
	return 0, fmt.Errorf("%w: swap kind %q", core.ErrInvalidSwapParameters, s)
}

func parseAddKind(s string) (core.AddLiquidityKind, error) {
	switch s {
	case "unbalanced":
		return core.AddUnbalanced, nil
	case "single-token-exact-out":
		return core.AddSingleTokenExactOut, nil
	}
	return 0, fmt.Errorf("%w: add kind %q", core.ErrInvalidLiquidityParameters, s)
}

func parseRemoveKind(s string) (core.RemoveLiquidityKind, error) {
	switch s {
	case "proportional":
		return core.RemoveProportional, nil
	case "single-token-exact-in":
		return core.RemoveSingleTokenExactIn, nil
	case "single-token-exact-out":
		return core.RemoveSingleTokenExactOut, nil
	}
	return 0, fmt.Errorf("%w: remove kind %q", core.ErrInvalidLiquidityParameters, s)
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", core.ErrInvalidAmount, s)
	}
	return v, nil
}

func parseAmounts(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(ss))
	for i, s := range ss {
		v, err := parseAmount(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// writeResult prints fields as indented JSON. Integers are emitted as
// decimal strings; with decimals > 0 every field gets a human readable
// twin suffixed "Units".
func writeResult(w io.Writer, decimals int32, fields map[string]any) error {
	out := make(map[string]any, 2*len(fields))
	for k, v := range fields {
		switch x := v.(type) {
		case *big.Int:
			out[k] = x.String()
			if decimals > 0 {
				out[k+"Units"] = units(x, decimals)
			}
		case []*big.Int:
			raw := make([]string, len(x))
			human := make([]string, len(x))
			for i, a := range x {
				raw[i] = a.String()
				human[i] = units(a, decimals)
			}
			out[k] = raw
			if decimals > 0 {
				out[k+"Units"] = human
			}
		default:
			out[k] = v
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func units(x *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(x, -decimals).String()
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
