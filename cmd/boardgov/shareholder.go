package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marleve/boardgov-app/tx"
)

type shareholderArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	Pubkey string
	Shares uint64
	Name   string
	NoSend bool
}

var shareholderArgs shareholderArguments

var shareholderCmd = &cobra.Command{
	Use:   "shareholder",
	Short: "register or replace a shareholder",
	Long:  ``,
	Run:   shareholderRun,
}

func init() {
	urlFlag(shareholderCmd, &shareholderArgs.Url)
	shareholderCmd.Flags().Uint64VarP(&shareholderArgs.Index, "index", "i", 0, "account index")
	shareholderCmd.Flags().Uint64VarP(&shareholderArgs.Nonce, "nonce", "n", 0, "account nonce")
	shareholderCmd.Flags().StringVarP(&shareholderArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	shareholderCmd.Flags().StringVarP(&shareholderArgs.Pubkey, "pubkey", "p", "", "shareholder ed25519 pubkey hex")
	shareholderCmd.Flags().Uint64VarP(&shareholderArgs.Shares, "shares", "t", 0, "share count")
	shareholderCmd.Flags().StringVarP(&shareholderArgs.Name, "name", "m", "", "shareholder name")
	shareholderCmd.Flags().BoolVarP(&shareholderArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func shareholderRun(cmd *cobra.Command, args []string) {
	pubkey, err := hex.DecodeString(shareholderArgs.Pubkey)
	if err != nil {
		fmt.Printf("invalid pubkey:%v\n", err)
		return
	}
	stx := &tx.ShareholderTx{
		Pubkey: pubkey,
		Shares: shareholderArgs.Shares,
		Name:   shareholderArgs.Name,
	}
	sendGovTx(shareholderArgs.Url, shareholderArgs.Index, shareholderArgs.Nonce,
		tx.GovTxTypeShareholder, stx, shareholderArgs.Skey, shareholderArgs.NoSend)
}
