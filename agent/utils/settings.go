package utils

import (
	"path/filepath"
	"time"

	"github.com/golang/glog"
)

const HTTPReqTimeout = 1 * time.Minute

var Settings = &Hub{}

type Hub struct {
	registerName           string        // name of the persistent register where served actors are stored
	registerBackupName     string        // actor register's (above, json) backup file
	registerBackupInterval time.Duration // hours between backups

	enclaveBackupName string // sealed box backup file
	enclaveBackupTime string // time of day for the scheduled backup

	serviceName string        // name of this service, used in URLs and endpoints
	hostAddr    string        // host name of the server's host seen from internet
	versionInfo string        // version number etc. in free format as a string
	timeout     time.Duration // timeout setting for http requests and connections
	exportPath  string        // wallet export path

	localTestMode bool // tells if we are running unit tests
}

func (h *Hub) RegisterName() string {
	return h.registerName
}

func (h *Hub) SetRegisterName(registerName string) {
	h.registerName = registerName
}

func (h *Hub) RegisterBackupName() string {
	return h.registerBackupName
}

func (h *Hub) SetRegisterBackupName(name string) {
	h.registerBackupName = name
}

func (h *Hub) RegisterBackupInterval() time.Duration {
	return h.registerBackupInterval
}

func (h *Hub) SetRegisterBackupInterval(interval time.Duration) {
	h.registerBackupInterval = interval
}

func (h *Hub) EnclaveBackupName() string {
	return h.enclaveBackupName
}

func (h *Hub) SetEnclaveBackupName(name string) {
	h.enclaveBackupName = name
}

func (h *Hub) EnclaveBackupTime() string {
	return h.enclaveBackupTime
}

func (h *Hub) SetEnclaveBackupTime(t string) {
	h.enclaveBackupTime = t
}

func (h *Hub) LocalTestMode() bool {
	return h.localTestMode
}

func (h *Hub) SetLocalTestMode(localTestMode bool) {
	h.localTestMode = localTestMode
}

// SetTimeout sets the default timeout for HTTP requests.
func (h *Hub) SetTimeout(to time.Duration) {
	h.timeout = to
}

// SetServiceName sets the service name of this agency. Service name is used in
// the URLs and endpoint addresses.
func (h *Hub) SetServiceName(n string) {
	h.serviceName = n
}

// SetVersionInfo sets current version info of this agency. The info is shown
// by the version endpoint and the CLI.
func (h *Hub) SetVersionInfo(info string) {
	h.versionInfo = info
}

// SetHostAddr sets current host name of this agency. The host name is used in
// the URLs and endpoints.
func (h *Hub) SetHostAddr(ipName string) {
	h.hostAddr = ipName
}

// SetExportPath sets path for wallet exports.
func (h *Hub) SetExportPath(exportPath string) {
	h.exportPath = exportPath
}

func (h *Hub) HostAddr() string {
	return h.hostAddr
}

func (h *Hub) ServiceName() string {
	if h.serviceName == "" && glog.V(3) {
		glog.Info("warning service name is empty")
	}
	return h.serviceName
}

func (h *Hub) VersionInfo() string {
	return h.versionInfo
}

func (h *Hub) Timeout() time.Duration {
	if h.timeout == 0 {
		return HTTPReqTimeout
	}
	return h.timeout
}

func (h *Hub) ExportPath() string {
	return h.exportPath
}

func (h *Hub) WalletExportPath(filename string) (exportPath, url string) {
	return filepath.Join(h.exportPath, filename),
		h.hostAddr + filepath.Join("/static", filename)
}
