package cmd

import (
	"log"
	"os"

	"github.com/alloy-network/alloy-agent/cmds/issue"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var issueEnvs = map[string]string{
	"pool-name":          "POOL_NAME",
	"psm-database-file":  "PSM_DATABASE_FILE",
	"enclave-path":       "ENCLAVE_PATH",
	"enclave-key":        "ENCLAVE_KEY",
	"issuer-wallet-name": "ISSUER_WALLET_NAME",
	"issuer-wallet-key":  "ISSUER_WALLET_KEY",
	"issuer-did":         "ISSUER_DID",
	"steward-seed":       "STEWARD_SEED",
	"prover-wallet-name": "PROVER_WALLET_NAME",
	"prover-wallet-key":  "PROVER_WALLET_KEY",
	"schema-name":        "SCHEMA_NAME",
	"schema-version":     "SCHEMA_VERSION",
	"attr":               "ATTR",
	"value":              "VALUE",
}

// issueCmd represents the issue command
var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Command for running a full credential issuance",
	Long: `
Command for running a full credential issuance.

Both wallets are local to this process: the issuer registers the schema
and the credential definition, onboards the prover, and drives the
offer, request and credential legs to the end.

Example
	alloy-agent issue \
		--issuer-wallet-name acme \
		--issuer-wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--prover-wallet-name alice \
		--prover-wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--schema-name email \
		--attr email \
		--value email=alice@example.com
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(issueEnvs, "ISSUE")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(issCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(issCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var issCmd = issue.Cmd{}

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	f := issueCmd.Flags()
	f.StringVar(&issCmd.PoolName, "pool-name", "FINDY_MEM_LEDGER", flagInfo("pool name", issueCmd.Name(), issueEnvs["pool-name"]))
	f.StringVar(&issCmd.PsmDb, "psm-database-file", "alloy.bolt", flagInfo("state machine database's filename", issueCmd.Name(), issueEnvs["psm-database-file"]))
	f.StringVar(&issCmd.EnclavePath, "enclave-path", "", flagInfo("enclave full file name", issueCmd.Name(), issueEnvs["enclave-path"]))
	f.StringVar(&issCmd.EnclaveKey, "enclave-key", "", flagInfo("SHA-256 32 bytes in hex ascii", issueCmd.Name(), issueEnvs["enclave-key"]))
	f.StringVar(&issCmd.IssuerWalletName, "issuer-wallet-name", "", flagInfo("issuer wallet name", issueCmd.Name(), issueEnvs["issuer-wallet-name"]))
	f.StringVar(&issCmd.IssuerWalletKey, "issuer-wallet-key", "", flagInfo("issuer wallet key", issueCmd.Name(), issueEnvs["issuer-wallet-key"]))
	f.StringVar(&issCmd.IssuerDid, "issuer-did", "", flagInfo("issuer's anchored root DID, empty means seed", issueCmd.Name(), issueEnvs["issuer-did"]))
	f.StringVar(&issCmd.StewardSeed, "steward-seed", "000000000000000000000000Steward1", flagInfo("steward seed for the issuer root", issueCmd.Name(), issueEnvs["steward-seed"]))
	f.StringVar(&issCmd.ProverWalletName, "prover-wallet-name", "", flagInfo("prover wallet name", issueCmd.Name(), issueEnvs["prover-wallet-name"]))
	f.StringVar(&issCmd.ProverWalletKey, "prover-wallet-key", "", flagInfo("prover wallet key", issueCmd.Name(), issueEnvs["prover-wallet-key"]))
	f.StringVar(&issCmd.SchemaName, "schema-name", "", flagInfo("schema name", issueCmd.Name(), issueEnvs["schema-name"]))
	f.StringVar(&issCmd.SchemaVersion, "schema-version", "1.0", flagInfo("schema version", issueCmd.Name(), issueEnvs["schema-version"]))
	f.StringSliceVar(&issCmd.Attrs, "attr", nil, flagInfo("schema attribute, can repeat", issueCmd.Name(), issueEnvs["attr"]))
	f.StringToStringVar(&issCmd.Values, "value", nil, flagInfo("attribute value as name=value, can repeat", issueCmd.Name(), issueEnvs["value"]))

	rootCmd.AddCommand(issueCmd)
}
