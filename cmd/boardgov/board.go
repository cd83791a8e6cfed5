package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marleve/boardgov-app/tx"
)

type boardArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	Pubkey string
	NoSend bool
}

var boardArgs boardArguments

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "promote a registered account to the board",
	Long:  ``,
	Run:   boardRun,
}

func init() {
	urlFlag(boardCmd, &boardArgs.Url)
	boardCmd.Flags().Uint64VarP(&boardArgs.Index, "index", "i", 0, "account index")
	boardCmd.Flags().Uint64VarP(&boardArgs.Nonce, "nonce", "n", 0, "account nonce")
	boardCmd.Flags().StringVarP(&boardArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	boardCmd.Flags().StringVarP(&boardArgs.Pubkey, "pubkey", "p", "", "board member ed25519 pubkey hex")
	boardCmd.Flags().BoolVarP(&boardArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func boardRun(cmd *cobra.Command, args []string) {
	pubkey, err := hex.DecodeString(boardArgs.Pubkey)
	if err != nil {
		fmt.Printf("invalid pubkey:%v\n", err)
		return
	}
	stx := &tx.BoardTx{
		Pubkey: pubkey,
	}
	sendGovTx(boardArgs.Url, boardArgs.Index, boardArgs.Nonce,
		tx.GovTxTypeBoard, stx, boardArgs.Skey, boardArgs.NoSend)
}
