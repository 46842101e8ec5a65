package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/pirouette/content/internal/bridge"
)

const renderedHome = `<html><body>
<h1 data-key="hero.title">Find your rhythm</h1>
<img data-key="hero.image" src="/images/hero.jpg"/>
</body></html>`

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) bridge.Envelope {
	_, data, err := ws.ReadMessage()
	assert.NoError(t, err)

	var env bridge.Envelope
	assert.NoError(t, json.Unmarshal(data, &env))
	return env
}

func waitForSession(t *testing.T, url string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		res, err := http.Get(url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("bridge session never came up")
}

func TestBridge_PageAdminRelay(t *testing.T) {
	server := newTestServer(t)

	// the embedded page connects and sends its rendered HTML first
	pageWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s1/page?location=/"))
	err := pageWS.WriteMessage(websocket.TextMessage, []byte(renderedHome))
	assert.NoError(t, err)

	waitForSession(t, server.URL+"/v1/bridge/s1/snapshot")

	// an admin joining an established session gets the snapshot at once
	adminWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s1/admin"))

	env := readEnvelope(t, adminWS)
	assert.Equal(t, bridge.KindOriginalContent, env.Type)

	snapshot := bridge.DecodeOverrides(env.Payload)
	assert.Equal(t, "Find your rhythm", snapshot.Text["hero.title"])
	assert.Equal(t, "/images/hero.jpg", snapshot.Images["hero.image"])

	// overrides from the admin reach the page connection
	apply, err := bridge.NewApplyOverrides(bridge.Overrides{
		Text: map[string]string{"hero.title": "Dance all summer"},
	})
	assert.NoError(t, err)

	raw, err := json.Marshal(apply)
	assert.NoError(t, err)
	assert.NoError(t, adminWS.WriteMessage(websocket.TextMessage, raw))

	forwarded := readEnvelope(t, pageWS)
	assert.Equal(t, bridge.KindApplyOverrides, forwarded.Type)
	assert.Equal(t, "Dance all summer", bridge.DecodeOverrides(forwarded.Payload).Text["hero.title"])

	// the session document reflects the applied override
	var applied struct {
		Text map[string]string `json:"text"`
	}
	status := getJSON(t, server.URL+"/v1/bridge/s1/snapshot", &applied)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dance all summer", applied.Text["hero.title"])
}

func TestBridge_OverridesEndpoint(t *testing.T) {
	server := newTestServer(t)

	pageWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s2/page?location=/"))
	err := pageWS.WriteMessage(websocket.TextMessage, []byte(renderedHome))
	assert.NoError(t, err)

	waitForSession(t, server.URL+"/v1/bridge/s2/snapshot")

	res := sendJSON(t, http.MethodPost, server.URL+"/v1/bridge/s2/overrides", map[string]interface{}{
		"images": map[string]string{"hero.image": "/images/summer.jpg"},
	})
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var snapshot struct {
		Images map[string]string `json:"images"`
	}
	status := getJSON(t, server.URL+"/v1/bridge/s2/snapshot", &snapshot)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/images/summer.jpg", snapshot.Images["hero.image"])
}

func TestBridge_UnknownKindsIgnored(t *testing.T) {
	server := newTestServer(t)

	pageWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s3/page?location=/"))
	err := pageWS.WriteMessage(websocket.TextMessage, []byte(renderedHome))
	assert.NoError(t, err)

	waitForSession(t, server.URL+"/v1/bridge/s3/snapshot")

	adminWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s3/admin"))
	readEnvelope(t, adminWS) // initial snapshot

	// neither frame may break the session
	assert.NoError(t, adminWS.WriteMessage(websocket.TextMessage, []byte(`{"type":"REFRESH_EVERYTHING"}`)))
	assert.NoError(t, adminWS.WriteMessage(websocket.TextMessage, []byte(`not even json`)))

	var snapshot struct {
		Text map[string]string `json:"text"`
	}
	status := getJSON(t, server.URL+"/v1/bridge/s3/snapshot", &snapshot)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Find your rhythm", snapshot.Text["hero.title"])
}

func waitForSessionGone(t *testing.T, url string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		res, err := http.Get(url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusNotFound {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("bridge session never went away")
}

func TestBridge_SessionRemovedAfterLastPeerLeaves(t *testing.T) {
	server := newTestServer(t)

	pageWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s4/page?location=/"))
	assert.NoError(t, pageWS.WriteMessage(websocket.TextMessage, []byte(renderedHome)))

	waitForSession(t, server.URL+"/v1/bridge/s4/snapshot")

	adminWS := dialWS(t, wsURL(server.URL, "/v1/bridge/s4/admin"))
	env := readEnvelope(t, adminWS)
	assert.Equal(t, bridge.KindOriginalContent, env.Type)

	// the page leaving keeps the session alive for the attached admin
	pageWS.Close()
	waitForSession(t, server.URL+"/v1/bridge/s4/snapshot")

	// once the last admin leaves too, the session is torn down
	adminWS.Close()
	waitForSessionGone(t, server.URL+"/v1/bridge/s4/snapshot")
}
