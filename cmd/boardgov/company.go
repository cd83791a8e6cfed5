package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"

	"github.com/marleve/boardgov-app/tx"
	gov_types "github.com/marleve/boardgov-app/types"
)

type companyArguments struct {
	Url string
}

var companyArgs companyArguments

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "show the company register",
	Long:  ``,
	Run:   companyRun,
}

func init() {
	urlFlag(companyCmd, &companyArgs.Url)
}

func companyRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(companyArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	res, err := cli.ABCIQuery(context.Background(), "/company/", nil)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Println("company not initialized")
		return
	}
	var company gov_types.Company
	if err = json.Unmarshal(res.Response.Value, &company); err != nil {
		fmt.Printf("decode company err:%v\n", err)
		return
	}
	fmt.Printf("name:%q totalShares:%v height:%v\n", company.Name, company.TotalShares, company.Height)
}

type initCompanyArguments struct {
	Url         string
	Index       uint64
	Nonce       uint64
	Skey        string
	Name        string
	TotalShares uint64
	NoSend      bool
}

var initCompanyArgs initCompanyArguments

var initCompanyCmd = &cobra.Command{
	Use:   "initcompany",
	Short: "initialize the company register, once",
	Long:  ``,
	Run:   initCompanyRun,
}

func init() {
	urlFlag(initCompanyCmd, &initCompanyArgs.Url)
	initCompanyCmd.Flags().Uint64VarP(&initCompanyArgs.Index, "index", "i", 0, "account index")
	initCompanyCmd.Flags().Uint64VarP(&initCompanyArgs.Nonce, "nonce", "n", 0, "account nonce")
	initCompanyCmd.Flags().StringVarP(&initCompanyArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	initCompanyCmd.Flags().StringVarP(&initCompanyArgs.Name, "name", "m", "", "company name")
	initCompanyCmd.Flags().Uint64VarP(&initCompanyArgs.TotalShares, "shares", "t", 0, "authorized total shares")
	initCompanyCmd.Flags().BoolVarP(&initCompanyArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func initCompanyRun(cmd *cobra.Command, args []string) {
	stx := &tx.InitCompanyTx{
		Name:        initCompanyArgs.Name,
		TotalShares: initCompanyArgs.TotalShares,
	}
	sendGovTx(initCompanyArgs.Url, initCompanyArgs.Index, initCompanyArgs.Nonce,
		tx.GovTxTypeInitCompany, stx, initCompanyArgs.Skey, initCompanyArgs.NoSend)
}
