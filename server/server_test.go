package server

import (
	"bytes"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// how to install and use mockgen:
// go install github.com/golang/mock/mockgen
// mockgen -package server -source ./agent/comm/receiver.go > ./server/mock_test.go

func TestMain(m *testing.M) {
	_ = flag.Set("logtostderr", "true")

	utils.Settings.SetServiceName("agency")
	utils.Settings.SetHostAddr("http://localhost")
	utils.Settings.SetVersionInfo("agency test " + utils.Version)

	os.Exit(m.Run())
}

func newMock(t *testing.T, name string) (*gomock.Controller, *MockReceiver) {
	t.Helper()
	ctrl := gomock.NewController(t)
	r := NewMockReceiver(ctrl)
	r.EXPECT().Name().Return(name).AnyTimes()
	return ctrl, r
}

func post(h http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	request := httptest.NewRequest("POST", path, bytes.NewReader(body))
	writer := httptest.NewRecorder()
	h.ServeHTTP(writer, request)
	return writer
}

func TestVersionEndpoint(t *testing.T) {
	request := httptest.NewRequest("GET", "/version", nil)
	writer := httptest.NewRecorder()
	Handler().ServeHTTP(writer, request)

	require.Equal(t, http.StatusOK, writer.Code)
	require.Equal(t, utils.Version, writer.Body.String())
}

func TestDeliverRouting(t *testing.T) {
	ctrl, r := newMock(t, "bob")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("bob")

	r.EXPECT().Deliver("offer", gomock.Any()).Return(nil)

	writer := post(Handler(), "/agency/bob/offer", []byte("crypted"))
	require.Equal(t, http.StatusOK, writer.Code)
}

func TestDeliverFailure(t *testing.T) {
	ctrl, r := newMock(t, "bob")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("bob")

	r.EXPECT().Deliver("offer", gomock.Any()).Return(errors.New("inbox full"))

	writer := post(Handler(), "/agency/bob/offer", []byte("crypted"))
	require.Equal(t, http.StatusServiceUnavailable, writer.Code)
	require.Contains(t, writer.Body.String(), "delivery failed")
}

func TestHandshakeRouting(t *testing.T) {
	ctrl, r := newMock(t, "bob")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("bob")

	r.EXPECT().Handshake([]byte("hello")).Return([]byte("welcome"), nil)

	writer := post(Handler(), "/agency/bob/handshake", []byte("hello"))
	require.Equal(t, http.StatusOK, writer.Code)
	require.Equal(t, "welcome", writer.Body.String())
}

func TestHandshakeRefused(t *testing.T) {
	ctrl, r := newMock(t, "bob")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("bob")

	r.EXPECT().Handshake(gomock.Any()).Return(nil, errors.New("unknown peer"))

	writer := post(Handler(), "/agency/bob/handshake", []byte("hello"))
	require.Equal(t, http.StatusForbidden, writer.Code)
}

func TestPingEndpoint(t *testing.T) {
	ctrl, r := newMock(t, "bob")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("bob")

	writer := post(Handler(), "/agency/bob/ping", nil)
	require.Equal(t, http.StatusOK, writer.Code)
	require.Equal(t, utils.Settings.VersionInfo(), writer.Body.String())
}

func TestUnknownActor(t *testing.T) {
	writer := post(Handler(), "/agency/nobody/offer", []byte("crypted"))
	require.Equal(t, http.StatusNotFound, writer.Code)
	require.Contains(t, writer.Body.String(), "unknown actor")
}

func TestBadAddress(t *testing.T) {
	// no actor part
	writer := post(Handler(), "/agency/", []byte("crypted"))
	require.Equal(t, http.StatusNotFound, writer.Code)

	// no kind part
	ctrl, r := newMock(t, "bob")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("bob")

	writer = post(Handler(), "/agency/bob", []byte("crypted"))
	require.Equal(t, http.StatusNotFound, writer.Code)
}

func TestTestServerWiring(t *testing.T) {
	ctrl, r := newMock(t, "carol")
	defer ctrl.Finish()
	Register(r)
	defer Unregister("carol")

	StartTestHTTPServer()

	r.EXPECT().Deliver("proof", gomock.Any()).Return(nil)

	addr := endp.NewClientAddr("http://test/agency/carol/proof")
	reply, err := comm.SendPlain(addr, []byte("payload"))
	require.NoError(t, err)
	require.Empty(t, reply)

	// errors travel back thru the pseudo transport too
	addr = endp.NewClientAddr("http://test/agency/nobody/proof")
	_, err = comm.SendPlain(addr, []byte("payload"))
	require.Error(t, err)
}
