package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(pubkeyCmd)
	clCmd.AddCommand(accountCmd)
	clCmd.AddCommand(companyCmd)
	clCmd.AddCommand(initCompanyCmd)
	clCmd.AddCommand(shareholderCmd)
	clCmd.AddCommand(boardCmd)
	clCmd.AddCommand(newProposalCmd)
	clCmd.AddCommand(voteCmd)
	clCmd.AddCommand(finalizeCmd)
	clCmd.AddCommand(resultsCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
