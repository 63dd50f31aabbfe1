package cmd

import (
	"log"
	"os"

	"github.com/alloy-network/alloy-agent/cmds/schema"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// creddefCmd represents the creddef command
var creddefCmd = &cobra.Command{
	Use:   "creddef",
	Short: "Parent command for credential definition actions",
	Long: `
Parent command for credential definition actions
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var creddefCreateEnvs = map[string]string{
	"wallet-name": "WALLET_NAME",
	"wallet-key":  "WALLET_KEY",
	"pool-name":   "POOL_NAME",
	"did":         "DID",
	"schema-name": "SCHEMA_NAME",
	"schema-id":   "SCHEMA_ID",
	"revocable":   "REVOCABLE",
}

// creddefCreateCmd represents the creddef create subcommand
var creddefCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Command for writing a credential definition to the ledger",
	Long: `
Command for writing a credential definition to the ledger

Example
	alloy-agent creddef create \
		--wallet-name acme \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--did CnF8TKANkYnAvThPhSuz8v \
		--schema-name email \
		--schema-id CnF8TKANkYnAvThPhSuz8v:2:email:1.0
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(creddefCreateEnvs, "CREDDEF")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(cdCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(cdCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var cdCmd = schema.CredDefCmd{}

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	f := creddefCreateCmd.Flags()
	f.StringVar(&cdCmd.WalletName, "wallet-name", "", flagInfo("issuer wallet name", creddefCmd.Name(), creddefCreateEnvs["wallet-name"]))
	f.StringVar(&cdCmd.WalletKey, "wallet-key", "", flagInfo("issuer wallet key", creddefCmd.Name(), creddefCreateEnvs["wallet-key"]))
	f.StringVar(&cdCmd.PoolName, "pool-name", "FINDY_MEM_LEDGER", flagInfo("pool name", creddefCmd.Name(), creddefCreateEnvs["pool-name"]))
	f.StringVar(&cdCmd.Did, "did", "", flagInfo("issuer's root DID", creddefCmd.Name(), creddefCreateEnvs["did"]))
	f.StringVar(&cdCmd.SchemaName, "schema-name", "", flagInfo("schema name", creddefCmd.Name(), creddefCreateEnvs["schema-name"]))
	f.StringVar(&cdCmd.SchemaID, "schema-id", "", flagInfo("schema ID from the schema create output", creddefCmd.Name(), creddefCreateEnvs["schema-id"]))
	f.BoolVar(&cdCmd.Revocable, "revocable", false, flagInfo("support revocation", creddefCmd.Name(), creddefCreateEnvs["revocable"]))

	creddefCmd.AddCommand(creddefCreateCmd)
	rootCmd.AddCommand(creddefCmd)
}
