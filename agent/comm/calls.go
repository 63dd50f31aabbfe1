package comm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/sec"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// errorMessageMaxLength is the maximum length of the response body we will
// include into the generated error message
const errorMessageMaxLength = 80

var (
	// SendAndWaitReq is proxy function to route actual call to http or
	// pseudo http in tests.
	SendAndWaitReq = sendAndWaitHTTPRequest

	c = &http.Client{}
)

func sendAndWaitHTTPRequest(urlStr string, msg io.Reader, timeout time.Duration) (data []byte, err error) {
	defer err2.Handle(&err, "call http")

	URL := try.To1(url.Parse(urlStr))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	request := try.To1(http.NewRequestWithContext(ctx, "POST", URL.String(), msg))
	request.Close = true // deferred response.Body.Close isn't always enough

	request.Header.Set("Content-Type", "application/ssi-agent-wire")

	response := try.To1(c.Do(request))

	defer func() {
		closeErr := response.Body.Close()
		if closeErr != nil {
			glog.Warningln("body.Close: ", closeErr)
		}
	}()

	data, err = io.ReadAll(response.Body)

	return checkHTTPStatus(response, data)
}

// checkHTTPStatus checks the status code and gets the server message
func checkHTTPStatus(response *http.Response, data []byte) ([]byte, error) {
	if response.StatusCode != http.StatusOK {
		glog.Warning("http code:", response.Status)
		contentType := response.Header.Get("Content-type")
		// from our server: text/plain; charset=utf-8
		if strings.HasPrefix(contentType, "text/plain") {
			l := len(data)
			return nil, fmt.Errorf("%s: %s",
				response.Status, data[0:min(errorMessageMaxLength, l)])
		}
		return nil, fmt.Errorf("%v", response.Status)
	}
	return data, nil
}

// SendEnvelope authcrypts the payload thru the pipe and posts it to the
// receiver's address. The returned bytes are the HTTP response body, empty
// when the step has no immediate reply. It doesn't resend in case of
// failure, recovering is done at the protocol level.
func SendEnvelope(pipe sec.Pipe, addr *endp.Addr, payload []byte) (reply []byte, err error) {
	defer err2.Handle(&err, "send envelope")

	if glog.V(3) {
		glog.Infof("===== Outgoing TRANSPORT %s =====", addr.Kind)
		glog.Info(addr.Address())
		glog.Info("=====")
	}

	crypted, _ := try.To2(pipe.Pack(payload))

	return SendAndWaitReq(addr.Address(), bytes.NewReader(crypted),
		utils.Settings.Timeout())
}

// SendPlain posts a plaintext payload. Only the handshake and ping
// endpoints accept one.
func SendPlain(addr *endp.Addr, payload []byte) (reply []byte, err error) {
	defer err2.Handle(&err, "send plain")

	if glog.V(3) {
		glog.Infof("===== Outgoing plain TRANSPORT %s =====", addr.Kind)
		glog.Info(addr.Address())
		glog.Info("=====")
	}

	return SendAndWaitReq(addr.Address(), bytes.NewReader(payload),
		utils.Settings.Timeout())
}
