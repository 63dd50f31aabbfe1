/*
Package server is the HTTP transport of the agency. It routes incoming
payloads to registered actors by the address grammar

	{base}/{service}/{actor}/{kind}

The handshake and ping kinds are served synchronously in plaintext, every
other kind carries an authcrypted envelope which is dropped to the actor's
typed inbox and answered with an empty 200. Errors travel back as
text/plain bodies which the sender side folds into its error values.
*/
package server

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

var (
	receiversLock sync.RWMutex
	receivers     = make(map[string]comm.Receiver)
)

// Register makes an actor reachable thru the transport under its name.
// Registering the same name again replaces the old receiver.
func Register(r comm.Receiver) {
	receiversLock.Lock()
	defer receiversLock.Unlock()
	receivers[r.Name()] = r
	glog.V(1).Infoln("server: registered actor", r.Name())
}

// Unregister removes the actor from the transport routing.
func Unregister(name string) {
	receiversLock.Lock()
	defer receiversLock.Unlock()
	delete(receivers, name)
}

// ReceiverOf returns the receiver registered under the name.
func ReceiverOf(name string) (r comm.Receiver, found bool) {
	receiversLock.RLock()
	defer receiversLock.RUnlock()
	r, found = receivers[name]
	return
}

// AddrOf returns the transport base address of an actor served here.
func AddrOf(name string) *endp.Addr {
	return endp.NewClientAddr(fmt.Sprintf("%s/%s/%s",
		utils.Settings.HostAddr(), utils.Settings.ServiceName(), name))
}

// Handler builds the HTTP handler of the agency: the protocol transport
// under the service name, the version endpoint, and the static file
// service for wallet exports when an export path is set.
func Handler() http.Handler {
	mux := http.NewServeMux()

	pattern := fmt.Sprintf("/%s/", utils.Settings.ServiceName())
	mux.HandleFunc(pattern, protocolTransport)

	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		if glog.V(5) {
			glog.Info("/version requested")
		}
		_, _ = w.Write([]byte(utils.Version))
	})

	if exportPath := utils.Settings.ExportPath(); exportPath != "" {
		fs := http.FileServer(http.Dir(exportPath))
		mux.Handle("/static/", http.StripPrefix("/static", fs))
	}
	return mux
}

// StartHTTPServer starts the http server. The function blocks when it
// success. The server port is the port to listen, the host port given to
// BuildHostAddr is the port the world sees and is assigned to endpoints.
func StartHTTPServer(serverPort uint) error {
	sp := fmt.Sprintf(":%v", serverPort)
	if glog.V(1) {
		glog.Info(utils.Settings.VersionInfo())
		glog.Infof("HTTP Server on port: %v with service name: \"%s\"",
			serverPort, utils.Settings.ServiceName())
	}
	server := http.Server{
		Addr:    sp,
		Handler: Handler(),
	}
	return server.ListenAndServe()
}

func BuildHostAddr(scheme string, hostPort uint) {
	// update the real server host name for the actors' endpoints
	if hostPort != 80 {
		hostAddr := fmt.Sprintf("%s://%s:%v", scheme, utils.Settings.HostAddr(), hostPort)
		utils.Settings.SetHostAddr(hostAddr)
	} else {
		hostAddr := fmt.Sprintf("%s://%s", scheme, utils.Settings.HostAddr())
		utils.Settings.SetHostAddr(hostAddr)
	}
}

func protocolTransport(w http.ResponseWriter, r *http.Request) {
	defer err2.Catch(func(err error) {
		glog.Error("transport error:", err)
		errorResponse(w, http.StatusInternalServerError, "transport error")
	})

	ourAddress := logRequestInfo("Incoming TRANSPORT", r)
	if ourAddress == nil || ourAddress.Kind == "" {
		errorResponse(w, http.StatusNotFound, "bad transport address")
		return
	}

	rcvr, found := ReceiverOf(ourAddress.Rcvr)
	if !found {
		errorResponse(w, http.StatusNotFound,
			"unknown actor: "+ourAddress.Rcvr)
		return
	}

	data := try.To1(io.ReadAll(r.Body))

	switch ourAddress.Kind {
	case endp.HandshakeKind:
		response, err := rcvr.Handshake(data)
		if err != nil {
			glog.Warningln("handshake refused:", err)
			errorResponse(w, http.StatusForbidden, "handshake refused")
			return
		}
		w.Header().Set("Content-Type", "application/ssi-agent-wire")
		_, _ = w.Write(response)
	case endp.PingKind:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(utils.Settings.VersionInfo()))
	default:
		if err := rcvr.Deliver(ourAddress.Kind,
			comm.Packet{Addr: ourAddress, Payload: data}); err != nil {

			glog.Warningln("delivery failed:", err)
			errorResponse(w, http.StatusServiceUnavailable, "delivery failed")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func logRequestInfo(caption string, r *http.Request) *endp.Addr {
	ourAddress := endp.NewServerAddr(r.URL.Path)
	if !ourAddress.Valid() {
		glog.V(3).Infoln("------ address isn't valid:", r.URL.Path)
		return nil
	}
	ourAddress.BasePath = utils.Settings.HostAddr()
	if glog.V(3) {
		caption = fmt.Sprintf("===== %s %s =====", caption, ourAddress.Kind)
		glog.Info(caption, r.Method)
		glog.Info(ourAddress.Address())
		glog.Info("=====")
	}
	return ourAddress
}

// errorResponse writes the status with a text/plain body, the form the
// sender side error folding expects.
func errorResponse(w http.ResponseWriter, code int, msg string) {
	glog.V(2).Infoln("returning", code, msg)
	http.Error(w, msg, code)
}
