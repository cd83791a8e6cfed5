package main

import (
	"github.com/spf13/cobra"

	"github.com/marleve/boardgov-app/tx"
)

type voteArguments struct {
	Url      string
	Index    uint64
	Nonce    uint64
	Skey     string
	Proposal uint64
	Choice   uint8
	NoSend   bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "cast a share-weighted vote on a proposal",
	Long:  ``,
	Run:   voteRun,
}

func init() {
	urlFlag(voteCmd, &voteArgs.Url)
	voteCmd.Flags().Uint64VarP(&voteArgs.Index, "index", "i", 0, "account index")
	voteCmd.Flags().Uint64VarP(&voteArgs.Nonce, "nonce", "n", 0, "account nonce")
	voteCmd.Flags().StringVarP(&voteArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal index")
	voteCmd.Flags().Uint8VarP(&voteArgs.Choice, "choice", "c", 0, "vote choice: 0 abstain, 1 for, 2 against")
	voteCmd.Flags().BoolVarP(&voteArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func voteRun(cmd *cobra.Command, args []string) {
	stx := &tx.VoteTx{
		Proposal: voteArgs.Proposal,
		Choice:   voteArgs.Choice,
	}
	sendGovTx(voteArgs.Url, voteArgs.Index, voteArgs.Nonce,
		tx.GovTxTypeVote, stx, voteArgs.Skey, voteArgs.NoSend)
}
