package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedRequest struct {
	Auth string
	Body map[string]string
}

func setupGatewayServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var captured []capturedRequest

	handler := http.NewServeMux()
	handler.HandleFunc("/api/messages/send", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		captured = append(captured, capturedRequest{Auth: r.Header.Get("Authorization"), Body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, &captured
}

func newGateway(url string) *transport.Gateway {
	return transport.NewGateway(config.Transport{
		Driver:   transport.DriverGateway,
		BaseURL:  url,
		SendPath: "/api/messages/send",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
}

func TestGateway_Send(t *testing.T) {
	t.Run("sends credential per request", func(t *testing.T) {
		server, captured := setupGatewayServer(t, http.StatusOK, `{"success":true,"data":{"msgId":"wamid-1"}}`)
		gw := newGateway(server.URL)

		receipt, err := gw.Send(context.Background(), "tenant-a-key", transport.Message{
			To: "+14155238886", Text: "hello", Reference: "ref-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "wamid-1", receipt.MessageID)
		assert.Equal(t, "ref-1", receipt.Reference)

		_, err = gw.Send(context.Background(), "tenant-b-key", transport.Message{To: "+100", Text: "bye"})
		require.NoError(t, err)

		require.Len(t, *captured, 2)
		assert.Equal(t, "Bearer tenant-a-key", (*captured)[0].Auth)
		assert.Equal(t, "Bearer tenant-b-key", (*captured)[1].Auth)
		assert.Equal(t, map[string]string{"to": "+14155238886", "text": "hello", "reference": "ref-1"}, (*captured)[0].Body)
	})

	t.Run("concurrent tenants never share credentials", func(t *testing.T) {
		server, captured := setupGatewayServer(t, http.StatusOK, `{"success":true,"data":{"msgId":"x"}}`)
		gw := newGateway(server.URL)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := "key-a"
				if i%2 == 1 {
					key = "key-b"
				}
				_, err := gw.Send(context.Background(), key, transport.Message{To: "+1", Text: key})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		require.Len(t, *captured, 20)
		for _, req := range *captured {
			assert.Equal(t, "Bearer "+req.Body["text"], req.Auth)
		}
	})

	t.Run("provider failure is an error", func(t *testing.T) {
		server, _ := setupGatewayServer(t, http.StatusOK, `{"success":false,"message":"session not connected"}`)
		gw := newGateway(server.URL)

		_, err := gw.Send(context.Background(), "key", transport.Message{To: "+1", Text: "hi"})

		assert.ErrorIs(t, err, transport.ErrSendFailed)
	})

	t.Run("http error status is an error", func(t *testing.T) {
		server, _ := setupGatewayServer(t, http.StatusUnauthorized, `{"success":false,"message":"bad token"}`)
		gw := newGateway(server.URL)

		_, err := gw.Send(context.Background(), "key", transport.Message{To: "+1", Text: "hi"})

		assert.ErrorIs(t, err, transport.ErrSendFailed)
		assert.Contains(t, err.Error(), "bad token")
	})

	t.Run("missing credential", func(t *testing.T) {
		gw := newGateway("http://127.0.0.1:1")

		_, err := gw.Send(context.Background(), "", transport.Message{To: "+1", Text: "hi"})

		assert.ErrorIs(t, err, transport.ErrInvalidCredential)
	})
}

func TestNew(t *testing.T) {
	tr, err := transport.New(config.Transport{Driver: "twilio", TwilioFrom: "+14155238886"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, transport.DriverTwilio, tr.Name())

	tr, err = transport.New(config.Transport{Driver: "gateway", BaseURL: "http://localhost"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, transport.DriverGateway, tr.Name())

	_, err = transport.New(config.Transport{Driver: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestTwilio_SendRejectsMalformedCredential(t *testing.T) {
	tw := transport.NewTwilio(config.Transport{TwilioFrom: "+14155238886"}, zap.NewNop())

	_, err := tw.Send(context.Background(), "no-separator", transport.Message{To: "+1", Text: "hi"})

	assert.ErrorIs(t, err, transport.ErrInvalidCredential)
}
