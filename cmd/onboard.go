package cmd

import (
	"log"
	"os"

	"github.com/alloy-network/alloy-agent/cmds/onboard"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var onboardEnvs = map[string]string{
	"wallet-name": "WALLET_NAME",
	"wallet-key":  "WALLET_KEY",
	"pool-name":   "POOL_NAME",
	"did":         "DID",
	"role":        "ROLE",
	"endpoint":    "ENDPOINT",
	"peer-name":   "PEER_NAME",
	"peer-url":    "PEER_URL",
	"peer-role":   "PEER_ROLE",
}

// onboardCmd represents the onboard command
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Command for onboarding a peer actor",
	Long: `
Command for onboarding a peer actor.

The anchor wallet connects to a peer served by an agency, exchanges
pairwise DIDs with it, and anchors the peer's DID to the ledger with
the rights of the peer's role.

Example
	alloy-agent onboard \
		--wallet-name steward \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--did Th7MpTaRZVRYnPiabds81Y \
		--role steward \
		--endpoint http://localhost:8080 \
		--peer-name acme \
		--peer-url http://localhost:8080/agency/acme \
		--peer-role issuer
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(onboardEnvs, "ONBOARD")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		try.To(onbCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(onbCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var onbCmd = onboard.Cmd{}

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	f := onboardCmd.Flags()
	f.StringVar(&onbCmd.WalletName, "wallet-name", "", flagInfo("anchor wallet name", onboardCmd.Name(), onboardEnvs["wallet-name"]))
	f.StringVar(&onbCmd.WalletKey, "wallet-key", "", flagInfo("anchor wallet key", onboardCmd.Name(), onboardEnvs["wallet-key"]))
	f.StringVar(&onbCmd.PoolName, "pool-name", "FINDY_MEM_LEDGER", flagInfo("pool name", onboardCmd.Name(), onboardEnvs["pool-name"]))
	f.StringVar(&onbCmd.AnchorDid, "did", "", flagInfo("anchor's root DID", onboardCmd.Name(), onboardEnvs["did"]))
	f.StringVar(&onbCmd.AnchorRole, "role", "steward", flagInfo("anchor's role", onboardCmd.Name(), onboardEnvs["role"]))
	f.StringVar(&onbCmd.Endpoint, "endpoint", "", flagInfo("anchor's own base address", onboardCmd.Name(), onboardEnvs["endpoint"]))
	f.StringVar(&onbCmd.PeerName, "peer-name", "", flagInfo("peer actor's name", onboardCmd.Name(), onboardEnvs["peer-name"]))
	f.StringVar(&onbCmd.PeerURL, "peer-url", "", flagInfo("peer actor's base address at the agency", onboardCmd.Name(), onboardEnvs["peer-url"]))
	f.StringVar(&onbCmd.PeerRole, "peer-role", "prover", flagInfo("peer actor's role", onboardCmd.Name(), onboardEnvs["peer-role"]))

	rootCmd.AddCommand(onboardCmd)
}
