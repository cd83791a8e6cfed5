package main

import (
	"github.com/spf13/cobra"

	"github.com/marleve/boardgov-app/tx"
)

type newProposalArguments struct {
	Url        string
	Index      uint64
	Nonce      uint64
	Skey       string
	Kind       uint8
	Title      string
	Data       string
	VotingDays uint64
	NoSend     bool
}

var newProposalArgs newProposalArguments

var newProposalCmd = &cobra.Command{
	Use:   "newproposal",
	Short: "submit a governance proposal",
	Long:  ``,
	Run:   newProposalRun,
}

func init() {
	urlFlag(newProposalCmd, &newProposalArgs.Url)
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Index, "index", "i", 0, "account index")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Nonce, "nonce", "n", 0, "account nonce")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	newProposalCmd.Flags().Uint8VarP(&newProposalArgs.Kind, "kind", "k", 0, "proposal kind: 0 general, 1 director election, 2 merger, 3 dividend, 4 compensation, 5 bylaw amendment")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Title, "title", "t", "", "proposal title")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Data, "data", "d", "", "proposal data")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.VotingDays, "days", "e", 7, "voting period in days")
	newProposalCmd.Flags().BoolVarP(&newProposalArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func newProposalRun(cmd *cobra.Command, args []string) {
	stx := &tx.ProposalTx{
		Kind:       newProposalArgs.Kind,
		Title:      newProposalArgs.Title,
		Data:       []byte(newProposalArgs.Data),
		VotingDays: newProposalArgs.VotingDays,
	}
	sendGovTx(newProposalArgs.Url, newProposalArgs.Index, newProposalArgs.Nonce,
		tx.GovTxTypeProposal, stx, newProposalArgs.Skey, newProposalArgs.NoSend)
}
