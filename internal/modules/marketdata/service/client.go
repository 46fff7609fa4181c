package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"sma_bot/internal/modules/config"
)

const (
	defaultRestURL = "https://www.okx.com"
	defaultWSURL   = "wss://ws.okx.com:8443/ws/v5/business"
)

// Client отдаёт публичные свечи OKX (REST история + WebSocket стрим).
type Client struct {
	restURL string
	wsURL   string

	http     *http.Client
	wsDialer *websocket.Dialer

	reconnectDelay time.Duration
	pingEvery      time.Duration
	pageDelay      time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return newClient(cfg.Market.RestURL, cfg.Market.WSURL)
}

func newClient(restURL, wsURL string) *Client {
	if restURL == "" {
		restURL = defaultRestURL
	}
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	return &Client{
		restURL:        strings.TrimRight(restURL, "/"),
		wsURL:          wsURL,
		http:           &http.Client{Timeout: 10 * time.Second},
		wsDialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		reconnectDelay: time.Second,
		pingEvery:      20 * time.Second,
		pageDelay:      200 * time.Millisecond,
	}
}
