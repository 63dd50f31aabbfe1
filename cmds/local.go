package cmds

import (
	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/alloy-network/alloy-agent/server"
)

// ServeLocal wires the actors to an in-process transport: every actor is
// registered to the server and sends are routed straight thru the
// transport handler without a listening socket. The issue, proof and demo
// commands run their whole flow inside one process this way, like the
// reference scenario does.
func ServeLocal(actors ...*actor.Actor) {
	if utils.Settings.ServiceName() == "" {
		utils.Settings.SetServiceName("agency")
	}
	if utils.Settings.HostAddr() == "" {
		utils.Settings.SetHostAddr("http://local")
	}
	for _, a := range actors {
		a.SetAddr(server.AddrOf(a.Name()))
		server.Register(a)
	}
	server.StartTestHTTPServer()
}
