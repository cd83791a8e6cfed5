package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"

	"github.com/marleve/boardgov-app/tx"
)

type finalizeArguments struct {
	Url      string
	Index    uint64
	Nonce    uint64
	Skey     string
	Proposal uint64
	NoSend   bool
}

var finalizeArgs finalizeArguments

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "settle a proposal whose voting deadline has passed",
	Long:  ``,
	Run:   finalizeRun,
}

func init() {
	urlFlag(finalizeCmd, &finalizeArgs.Url)
	finalizeCmd.Flags().Uint64VarP(&finalizeArgs.Index, "index", "i", 0, "account index")
	finalizeCmd.Flags().Uint64VarP(&finalizeArgs.Nonce, "nonce", "n", 0, "account nonce")
	finalizeCmd.Flags().StringVarP(&finalizeArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	finalizeCmd.Flags().Uint64VarP(&finalizeArgs.Proposal, "proposal", "p", 0, "proposal index")
	finalizeCmd.Flags().BoolVarP(&finalizeArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func finalizeRun(cmd *cobra.Command, args []string) {
	stx := &tx.FinalizeTx{
		Proposal: finalizeArgs.Proposal,
	}
	sendGovTx(finalizeArgs.Url, finalizeArgs.Index, finalizeArgs.Nonce,
		tx.GovTxTypeFinalize, stx, finalizeArgs.Skey, finalizeArgs.NoSend)
}

type resultsArguments struct {
	Url      string
	Proposal uint64
}

var resultsArgs resultsArguments

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "show the tallies and verdict of a proposal",
	Long:  ``,
	Run:   resultsRun,
}

func init() {
	urlFlag(resultsCmd, &resultsArgs.Url)
	resultsCmd.Flags().Uint64VarP(&resultsArgs.Proposal, "proposal", "p", 0, "proposal index")
}

func resultsRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(resultsArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	s := fmt.Sprintf("0%x", resultsArgs.Proposal)
	if len(s)&1 == 1 {
		s = s[1:]
	}
	dat, _ := hex.DecodeString(s)
	res, err := cli.ABCIQuery(context.Background(), "/results/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("proposal not found: %v\n", res.Response.Log)
		return
	}
	var out map[string]any
	if err = json.Unmarshal(res.Response.Value, &out); err != nil {
		fmt.Printf("decode results err:%v\n", err)
		return
	}
	dat, _ = json.MarshalIndent(out, "", "  ")
	fmt.Println(string(dat))
}
