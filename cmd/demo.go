package cmd

import (
	"log"
	"os"

	"github.com/alloy-network/alloy-agent/cmds/demo"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var demoEnvs = map[string]string{
	"pool-name":         "POOL_NAME",
	"psm-database-file": "PSM_DATABASE_FILE",
	"enclave-path":      "ENCLAVE_PATH",
	"enclave-key":       "ENCLAVE_KEY",
	"wallet-key":        "WALLET_KEY",
	"wallet-prefix":     "WALLET_PREFIX",
	"steward-seed":      "STEWARD_SEED",
}

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Command for running the full credential lifecycle demo",
	Long: `
Command for running the full credential lifecycle demo.

Four fresh wallets are created: the steward onboards the others, the
issuer registers an email schema and issues a credential to the prover,
and the verifier requests and verifies a proof of it.

Example
	alloy-agent demo \
		--wallet-prefix demo \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(demoEnvs, "DEMO")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(dmCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(dmCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var dmCmd = demo.Cmd{}

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	f := demoCmd.Flags()
	f.StringVar(&dmCmd.PoolName, "pool-name", "FINDY_MEM_LEDGER", flagInfo("pool name", demoCmd.Name(), demoEnvs["pool-name"]))
	f.StringVar(&dmCmd.PsmDb, "psm-database-file", "alloy.bolt", flagInfo("state machine database's filename", demoCmd.Name(), demoEnvs["psm-database-file"]))
	f.StringVar(&dmCmd.EnclavePath, "enclave-path", "", flagInfo("enclave full file name", demoCmd.Name(), demoEnvs["enclave-path"]))
	f.StringVar(&dmCmd.EnclaveKey, "enclave-key", "", flagInfo("SHA-256 32 bytes in hex ascii", demoCmd.Name(), demoEnvs["enclave-key"]))
	f.StringVar(&dmCmd.WalletKey, "wallet-key", "", flagInfo("one key for all demo wallets", demoCmd.Name(), demoEnvs["wallet-key"]))
	f.StringVar(&dmCmd.WalletPrefix, "wallet-prefix", "demo", flagInfo("name prefix for the demo wallets", demoCmd.Name(), demoEnvs["wallet-prefix"]))
	f.StringVar(&dmCmd.StewardSeed, "steward-seed", "000000000000000000000000Steward1", flagInfo("steward seed", demoCmd.Name(), demoEnvs["steward-seed"]))

	rootCmd.AddCommand(demoCmd)
}
