package cmd

import (
	"log"
	"os"

	"github.com/alloy-network/alloy-agent/cmds/proof"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var proofEnvs = map[string]string{
	"pool-name":            "POOL_NAME",
	"psm-database-file":    "PSM_DATABASE_FILE",
	"enclave-path":         "ENCLAVE_PATH",
	"enclave-key":          "ENCLAVE_KEY",
	"verifier-wallet-name": "VERIFIER_WALLET_NAME",
	"verifier-wallet-key":  "VERIFIER_WALLET_KEY",
	"prover-wallet-name":   "PROVER_WALLET_NAME",
	"prover-wallet-key":    "PROVER_WALLET_KEY",
	"prover-did":           "PROVER_DID",
	"proof-request":        "PROOF_REQUEST",
	"self-attested":        "SELF_ATTESTED",
}

// proofCmd represents the proof command
var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Command for running a full proof exchange",
	Long: `
Command for running a full proof exchange.

Both wallets are local to this process: the verifier onboards the
prover and drives the request, presentation and verification legs to
the end.

Example
	alloy-agent proof \
		--verifier-wallet-name bank \
		--verifier-wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--prover-wallet-name alice \
		--prover-wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--proof-request '{"name":"proof","requested_attributes":{...}}'
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(proofEnvs, "PROOF")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(prfCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(prfCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var prfCmd = proof.Cmd{}

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	f := proofCmd.Flags()
	f.StringVar(&prfCmd.PoolName, "pool-name", "FINDY_MEM_LEDGER", flagInfo("pool name", proofCmd.Name(), proofEnvs["pool-name"]))
	f.StringVar(&prfCmd.PsmDb, "psm-database-file", "alloy.bolt", flagInfo("state machine database's filename", proofCmd.Name(), proofEnvs["psm-database-file"]))
	f.StringVar(&prfCmd.EnclavePath, "enclave-path", "", flagInfo("enclave full file name", proofCmd.Name(), proofEnvs["enclave-path"]))
	f.StringVar(&prfCmd.EnclaveKey, "enclave-key", "", flagInfo("SHA-256 32 bytes in hex ascii", proofCmd.Name(), proofEnvs["enclave-key"]))
	f.StringVar(&prfCmd.VerifierWalletName, "verifier-wallet-name", "", flagInfo("verifier wallet name", proofCmd.Name(), proofEnvs["verifier-wallet-name"]))
	f.StringVar(&prfCmd.VerifierWalletKey, "verifier-wallet-key", "", flagInfo("verifier wallet key", proofCmd.Name(), proofEnvs["verifier-wallet-key"]))
	f.StringVar(&prfCmd.ProverWalletName, "prover-wallet-name", "", flagInfo("prover wallet name", proofCmd.Name(), proofEnvs["prover-wallet-name"]))
	f.StringVar(&prfCmd.ProverWalletKey, "prover-wallet-key", "", flagInfo("prover wallet key", proofCmd.Name(), proofEnvs["prover-wallet-key"]))
	f.StringVar(&prfCmd.ProverDid, "prover-did", "", flagInfo("prover's root DID from an earlier issue run", proofCmd.Name(), proofEnvs["prover-did"]))
	f.StringVar(&prfCmd.ProofReqJSON, "proof-request", "", flagInfo("proof request as JSON", proofCmd.Name(), proofEnvs["proof-request"]))
	f.StringToStringVar(&prfCmd.SelfAttested, "self-attested", nil, flagInfo("self attested value as referent=value, can repeat", proofCmd.Name(), proofEnvs["self-attested"]))

	rootCmd.AddCommand(proofCmd)
}
