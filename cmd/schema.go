package cmd

import (
	"log"
	"os"

	"github.com/alloy-network/alloy-agent/cmds/schema"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Parent command for schema actions",
	Long: `
Parent command for schema actions
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var schemaCreateEnvs = map[string]string{
	"wallet-name": "WALLET_NAME",
	"wallet-key":  "WALLET_KEY",
	"pool-name":   "POOL_NAME",
	"did":         "DID",
	"name":        "NAME",
	"version":     "VERSION",
	"attr":        "ATTR",
}

// schemaCreateCmd represents the schema create subcommand
var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Command for writing a schema to the ledger",
	Long: `
Command for writing a schema to the ledger

Example
	alloy-agent schema create \
		--wallet-name acme \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--did CnF8TKANkYnAvThPhSuz8v \
		--name email \
		--version 1.0 \
		--attr email
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(schemaCreateEnvs, "SCHEMA")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(schCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(schCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var schCmd = schema.CreateCmd{}

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	f := schemaCreateCmd.Flags()
	f.StringVar(&schCmd.WalletName, "wallet-name", "", flagInfo("issuer wallet name", schemaCmd.Name(), schemaCreateEnvs["wallet-name"]))
	f.StringVar(&schCmd.WalletKey, "wallet-key", "", flagInfo("issuer wallet key", schemaCmd.Name(), schemaCreateEnvs["wallet-key"]))
	f.StringVar(&schCmd.PoolName, "pool-name", "FINDY_MEM_LEDGER", flagInfo("pool name", schemaCmd.Name(), schemaCreateEnvs["pool-name"]))
	f.StringVar(&schCmd.Did, "did", "", flagInfo("issuer's root DID", schemaCmd.Name(), schemaCreateEnvs["did"]))
	f.StringVar(&schCmd.Name, "name", "", flagInfo("schema name", schemaCmd.Name(), schemaCreateEnvs["name"]))
	f.StringVar(&schCmd.Version, "version", "1.0", flagInfo("schema version", schemaCmd.Name(), schemaCreateEnvs["version"]))
	f.StringSliceVar(&schCmd.Attrs, "attr", nil, flagInfo("schema attribute, can repeat", schemaCmd.Name(), schemaCreateEnvs["attr"]))

	schemaCmd.AddCommand(schemaCreateCmd)
	rootCmd.AddCommand(schemaCmd)
}
