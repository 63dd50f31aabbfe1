package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/findy-network/findy-wrapper-go/did"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

var testMux http.Handler

// StartTestHTTPServer routes comm.SendAndWaitReq thru the transport
// handler without opening a port. Tests which need real URLs use
// StartTestHTTPServer2 instead.
func StartTestHTTPServer() {
	testMux = Handler()
	comm.SendAndWaitReq = testSendAndWaitHTTPRequest
}

// StartTestHTTPServer2 serves the transport handler from a httptest
// server and points the host address setting to it. The caller closes
// the returned server.
func StartTestHTTPServer2() *httptest.Server {
	srv := httptest.NewServer(Handler())
	utils.Settings.SetHostAddr(srv.URL)
	return srv
}

func testSendAndWaitHTTPRequest(urlStr string, msg io.Reader, _ time.Duration) (data []byte, err error) {
	ea := endp.NewClientAddr(urlStr)
	request, _ := http.NewRequestWithContext(context.TODO(),
		"POST", ea.TestAddress(), msg)
	writer := httptest.NewRecorder()
	testMux.ServeHTTP(writer, request)

	if writer.Code != http.StatusOK {
		return nil, fmt.Errorf("%v: %s", writer.Code, writer.Body.String())
	}
	return writer.Body.Bytes(), nil
}

// ResetEnv wipes the indy client data, the export path and the actor
// register, and recreates the steward wallet. Test helper only.
func ResetEnv(w *ssi.Wallet, exportPath string) {
	defer err2.Catch(func(err error) {
		fmt.Println(err)
	})
	try.To(os.RemoveAll(utils.IndyBaseDir() + "/.indy_client"))
	try.To(os.RemoveAll(exportPath))

	reg := &utils.Reg{}
	try.To(reg.Reset(utils.Settings.RegisterName()))

	w.Create()
	handle := w.Open().Int()
	r := <-did.CreateAndStore(handle, did.Did{Seed: "000000000000000000000000Steward1"})
	if r.Err() != nil {
		fmt.Println(r.Err())
	}
	w.Close(handle)
}
