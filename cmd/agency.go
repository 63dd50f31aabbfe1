package cmd

import (
	"log"
	"os"
	"time"

	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/alloy-network/alloy-agent/cmds/agency"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// AgencyCmd represents the agency command
var AgencyCmd = &cobra.Command{
	Use:   "agency",
	Short: "Parent command for the agency server",
	Long: `
Parent command for the agency server
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var agencyStartEnvs = map[string]string{
	"host-address":             "HOST_ADDRESS",
	"host-scheme":              "HOST_SCHEME",
	"host-port":                "HOST_PORT",
	"server-port":              "SERVER_PORT",
	"service-name":             "SERVICE_NAME",
	"export-path":              "EXPORT_PATH",
	"pool-name":                "POOL_NAME",
	"pool-protocol":            "POOL_PROTOCOL",
	"psm-database-file":        "PSM_DATABASE_FILE",
	"psm-database-key":         "PSM_DATABASE_KEY",
	"reset-register":           "RESET_REGISTER",
	"register-file":            "REGISTER_FILE",
	"register-backup":          "REGISTER_BACKUP",
	"register-backup-interval": "REGISTER_BACKUP_INTERVAL",
	"enclave-path":             "ENCLAVE_PATH",
	"enclave-key":              "ENCLAVE_KEY",
	"enclave-backup":           "ENCLAVE_BACKUP",
	"enclave-backup-time":      "ENCLAVE_BACKUP_TIME",
	"actor":                    "ACTOR",
}

// startAgencyCmd represents the agency start subcommand
var startAgencyCmd = &cobra.Command{
	Use:   "start",
	Short: "Command for starting agency",
	Long: `
Start command for the alloy agency server.

Example
	alloy-agent agency start \
		--pool-name alloy \
		--register-file alloy.json \
		--actor alice:prover \
		--actor acme:issuer
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(agencyStartEnvs, "AGENCY")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		try.To(aCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(aCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var aCmd = agency.Cmd{}

const registerBackupInterval = 12 * time.Hour

func init() {
	defer err2.Catch(func(err error) {
		log.Println(err)
	})

	aCmd.VersionInfo = "alloy-agent v. " + utils.Version

	flags := startAgencyCmd.Flags()
	flags.StringVar(&aCmd.HostAddr, "host-address", "localhost", flagInfo("host address", AgencyCmd.Name(), agencyStartEnvs["host-address"]))
	flags.StringVar(&aCmd.HostScheme, "host-scheme", "http", flagInfo("scheme of the agency's host address", AgencyCmd.Name(), agencyStartEnvs["host-scheme"]))
	flags.UintVar(&aCmd.HostPort, "host-port", 8080, flagInfo("host port", AgencyCmd.Name(), agencyStartEnvs["host-port"]))
	flags.UintVar(&aCmd.ServerPort, "server-port", 8080, flagInfo("server port", AgencyCmd.Name(), agencyStartEnvs["server-port"]))
	flags.StringVar(&aCmd.ServiceName, "service-name", "agency", flagInfo("service name", AgencyCmd.Name(), agencyStartEnvs["service-name"]))
	flags.StringVar(&aCmd.ExportPath, "export-path", "", flagInfo("path for wallet exports served as static files", AgencyCmd.Name(), agencyStartEnvs["export-path"]))
	flags.StringVar(&aCmd.PoolName, "pool-name", "alloy-pool", flagInfo("pool name", AgencyCmd.Name(), agencyStartEnvs["pool-name"]))
	flags.Uint64Var(&aCmd.PoolProtocol, "pool-protocol", 2, flagInfo("pool protocol", AgencyCmd.Name(), agencyStartEnvs["pool-protocol"]))
	flags.StringVar(&aCmd.PsmDb, "psm-database-file", "alloy.bolt", flagInfo("state machine database's filename", AgencyCmd.Name(), agencyStartEnvs["psm-database-file"]))
	flags.StringVar(&aCmd.PsmDbKey, "psm-database-key", "", flagInfo("state machine database's encryption key", AgencyCmd.Name(), agencyStartEnvs["psm-database-key"]))
	flags.BoolVar(&aCmd.ResetData, "reset-register", false, flagInfo("reset actor register", AgencyCmd.Name(), agencyStartEnvs["reset-register"]))
	flags.StringVar(&aCmd.Register, "register-file", "alloy.json", flagInfo("actor register's filename", AgencyCmd.Name(), agencyStartEnvs["register-file"]))
	flags.StringVar(&aCmd.RegisterBackupName, "register-backup", "alloy.json.bak", flagInfo("actor register backup file", AgencyCmd.Name(), agencyStartEnvs["register-backup"]))
	flags.DurationVar(&aCmd.RegisterBackupInterval, "register-backup-interval", registerBackupInterval, flagInfo("duration between actor register backups", AgencyCmd.Name(), agencyStartEnvs["register-backup-interval"]))
	flags.StringVar(&aCmd.EnclavePath, "enclave-path", "", flagInfo("enclave full file name", AgencyCmd.Name(), agencyStartEnvs["enclave-path"]))
	flags.StringVar(&aCmd.EnclaveKey, "enclave-key", "", flagInfo("SHA-256 32 bytes in hex ascii", AgencyCmd.Name(), agencyStartEnvs["enclave-key"]))
	flags.StringVar(&aCmd.EnclaveBackupName, "enclave-backup", "", flagInfo("base name for enclave backup file", AgencyCmd.Name(), agencyStartEnvs["enclave-backup"]))
	flags.StringVar(&aCmd.EnclaveBackupTime, "enclave-backup-time", "03:00", flagInfo("time to start enclave backup in HH:MM", AgencyCmd.Name(), agencyStartEnvs["enclave-backup-time"]))
	flags.StringSliceVar(&aCmd.Actors, "actor", nil, flagInfo("name:role pair to serve, can repeat", AgencyCmd.Name(), agencyStartEnvs["actor"]))

	rootCmd.AddCommand(AgencyCmd)
	AgencyCmd.AddCommand(startAgencyCmd)
}
