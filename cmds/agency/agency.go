// Package agency implements the agency server command. The agency opens
// the ledger pool, the sealed box and the protocol journal, serves the
// actors of its persistent register over the HTTP transport, and runs
// the scheduled maintenance jobs.
package agency

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/alloy-network/alloy-agent/server"
	_ "github.com/findy-network/findy-wrapper-go/addons" // install ledger plugins
	"github.com/findy-network/findy-wrapper-go/config"
	indypool "github.com/findy-network/findy-wrapper-go/pool"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	PoolProtocol uint64
	PoolName     string

	ServiceName string
	HostAddr    string
	HostScheme  string
	HostPort    uint
	ServerPort  uint
	ExportPath  string

	EnclavePath       string
	EnclaveKey        string
	EnclaveBackupName string
	EnclaveBackupTime string

	Register               string
	RegisterBackupName     string
	RegisterBackupInterval time.Duration

	PsmDb    string
	PsmDbKey string

	ResetData   bool
	VersionInfo string

	// name:role pairs to serve in addition to the register's content
	Actors []string
}

var (
	cron = gocron.NewScheduler(time.Now().Location())

	// the persistent register of the actors this agency serves
	reg utils.Reg
)

func (c *Cmd) Validate() error {
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}
	if c.HostAddr == "" {
		return errors.New("host address cannot be empty")
	}
	if c.HostPort == 0 {
		return errors.New("host port cannot be zero")
	}
	if c.Register == "" {
		return errors.New("actor register path cannot be empty")
	}
	if c.PsmDb == "" {
		return errors.New("psm database location must be given")
	}
	if c.EnclaveBackupTime != "" {
		if err := cmds.ValidateTime(c.EnclaveBackupTime); err != nil {
			return err
		}
	}
	for _, pair := range c.Actors {
		if _, _, err := splitActor(pair); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cmd) Exec(_ io.Writer) (r cmds.Result, err error) {
	return nil, StartAgency(c)
}

func StartAgency(serverCmd *Cmd) (err error) {
	defer err2.Handle(&err, "start agency")

	try.To(serverCmd.Setup())
	try.To(serverCmd.Run())
	serverCmd.closeAll()

	return nil
}

func (c *Cmd) PreRun() {
	utils.Settings.SetVersionInfo(c.VersionInfo)
	config.Set(config.SystemConfig{CryptoThreadPoolSize: 8})
	setProtocol(c.PoolProtocol)
}

func (c *Cmd) Setup() (err error) {
	defer err2.Handle(&err, "agency setup")

	c.printStartupArgs()
	try.To(c.initSealedBox())
	try.To(c.openPsm())
	pool.Open(c.PoolName)
	c.setRuntimeSettings()
	server.BuildHostAddr(c.HostScheme, c.HostPort)
	try.To(c.serveActors())
	return nil
}

func (c *Cmd) Run() (err error) {
	defer err2.Handle(&err, "agency run")

	c.startBackupTasks()
	try.To(server.StartHTTPServer(c.ServerPort))
	return nil
}

func (c *Cmd) printStartupArgs() {
	fmt.Println(
		"Actor register path:", c.Register,
		"\nState machine db path:", c.PsmDb,
		"\nHost address:", c.HostAddr,
		"\nHost port:", c.HostPort,
		"\nServer port:", c.ServerPort)
}

func (c *Cmd) initSealedBox() (err error) {
	defer err2.Handle(&err, "init sealed box")

	sealedBoxPath := c.EnclavePath
	if sealedBoxPath == "" {
		home := utils.IndyBaseDir()

		// make sure not to use same location for the enclave as tests
		sealedBoxPath = filepath.Join(home, ".indy_client/enclave.bolt")
	}

	return enclave.InitSealedBox(
		sealedBoxPath, c.EnclaveBackupName, c.EnclaveKey)
}

func (c *Cmd) openPsm() error {
	if c.PsmDbKey != "" {
		return psm.OpenWithKey(c.PsmDb, c.PsmDbKey)
	}
	return psm.Open(c.PsmDb)
}

func (c *Cmd) setRuntimeSettings() {
	utils.Settings.SetServiceName(c.ServiceName)
	utils.Settings.SetHostAddr(c.HostAddr)
	utils.Settings.SetExportPath(c.ExportPath)
	utils.Settings.SetRegisterName(c.Register)
	utils.Settings.SetRegisterBackupName(c.RegisterBackupName)
	utils.Settings.SetRegisterBackupInterval(c.RegisterBackupInterval)
	utils.Settings.SetEnclaveBackupName(c.EnclaveBackupName)
	utils.Settings.SetEnclaveBackupTime(c.EnclaveBackupTime)

	if c.HostPort == 0 {
		c.HostPort = c.ServerPort
	}
}

// serveActors loads the actor register, adds the actors given on the
// command line, and wires every entry to the transport. An actor's wallet
// key lives in the sealed box; a brand new actor gets a wallet here.
func (c *Cmd) serveActors() (err error) {
	defer err2.Handle(&err, "serve actors")

	if c.ResetData {
		try.To(reg.Reset(c.Register))
		glog.V(1).Infoln("actor register reset")
	} else {
		try.To(reg.Load(c.Register))
	}

	for _, pair := range c.Actors {
		name, role := try.To2(splitActor(pair))
		if !reg.Exist(name) {
			reg.Add(name, role)
		}
	}
	try.To(reg.Save(c.Register))

	count := 0
	reg.EnumValues(func(name string, v []string) bool {
		if len(v) < 1 {
			glog.Warningln("skipping register entry with no role:", name)
			return true
		}
		if err := c.serveActor(name, v[0]); err != nil {
			glog.Errorln("cannot serve actor:", err)
			return true
		}
		count++
		return true
	})
	glog.V(1).Infoln("serving", count, "actors")
	return nil
}

func (c *Cmd) serveActor(name, roleName string) (err error) {
	defer err2.Handle(&err, "serve actor")

	role := try.To1(actor.RoleByName(roleName))

	var key string
	if enclave.WalletKeyNotExists(name) {
		key = try.To1(enclave.NewWalletKey(name))
	} else {
		key = try.To1(enclave.WalletKeyByName(name))
	}

	w := ssi.NewRawWalletCfg(name, key)
	w.Create()

	a := actor.New(name, role, w)
	a.SetAddr(server.AddrOf(name))
	a.SetHandshake(onboarding.HandlerFor(a))
	server.Register(a)
	return nil
}

func (c *Cmd) startBackupTasks() {
	if c.EnclaveBackupName != "" {
		glog.V(1).Infoln("enclave backup time:", c.EnclaveBackupTime)
		_, err := cron.Every(1).Day().At(c.EnclaveBackupTime).Do(enclave.Backup)
		if err != nil {
			glog.Warningln("enclave backup start error:", err)
		}
	}
	if c.RegisterBackupName != "" {
		_, err := cron.Every(1).Day().At("04:30").Do(c.backupRegister)
		if err != nil {
			glog.Warningln("register backup start error:", err)
		}
	}
	_, err := cron.Every(1).Day().At("05:00").Do(sweepStaleMachines)
	if err != nil {
		glog.Warningln("psm sweep start error:", err)
	}
	cron.StartAsync()
}

// stale machines are finished runs nobody has touched for a day
const staleMachineAge = 24 * time.Hour

func sweepStaleMachines() {
	before := time.Now().Add(-staleMachineAge).UnixNano()
	count, err := psm.SweepStale(before)
	if err != nil {
		glog.Errorln("psm sweep:", err)
		return
	}
	glog.V(1).Infoln("psm sweep removed", count, "machines")
}

func (c *Cmd) backupRegister() {
	if err := reg.Save(c.RegisterBackupName); err != nil {
		glog.Errorln("register backup:", err)
		return
	}
	glog.V(1).Infoln("actor register backed up")
}

func (c *Cmd) closeAll() {
	cron.Stop()
	psm.Close()
	enclave.Close()
	pool.Close()
}

func splitActor(pair string) (name, role string, err error) {
	parts := strings.SplitN(pair, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("actor must be name:role, got %s", pair)
	}
	if _, err := actor.RoleByName(parts[1]); err != nil {
		return "", "", err
	}
	return parts[0], parts[1], nil
}

func setProtocol(version uint64) {
	r := <-indypool.SetProtocolVersion(version)
	if r.Err() != nil {
		glog.Error(r.Err())
		panic(r.Err())
	}
}

// ParseLoggingArgs re-parses the glog flags from one command line
// argument, the way the cobra layer passes them.
func ParseLoggingArgs(s string) {
	args := make([]string, 1, 12)
	args[0] = os.Args[0]
	args = append(args, strings.Split(s, " ")...)
	orgArgs := os.Args
	os.Args = args
	flag.Parse()
	os.Args = orgArgs
}
