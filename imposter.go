// Imposterbox web variant of the imposter game.
//
// One device is passed around the table. All but a configurable number of
// players are shown the same secret word; the imposters are shown nothing
// and have to improvise. After everyone has peeked, the group discusses,
// then the device goes around again for voting.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - One shared session per game, driven by a single hub goroutine, so
//   inputs are applied one at a time in arrival order
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - Rejected inputs answered only to the offending client; accepted inputs
//   broadcast a fresh state snapshot to everyone
// - Games auto-reaped after configurable idle timeout
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	crand "crypto/rand"
	_ "embed"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/imposterbox/games/imposter"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type  string `json:"type"`            // "set_player_count", "set_names", "set_imposter_count", "show", "next", "select", "confirm", "reset"
	Value int    `json:"value,omitempty"` // set_player_count / set_imposter_count / select
	Text  string `json:"text,omitempty"`  // set_names
}

// StateMessage is the full snapshot broadcast after every accepted input.
// The client renders whichever fields the current stage fills in.
type StateMessage struct {
	Type         string `json:"type"`  // "game_state"
	Stage        string `json:"stage"` // imposter.Stage string form
	MinPlayers   int    `json:"minPlayers"`
	MaxPlayers   int    `json:"maxPlayers"`
	MaxImposters int    `json:"maxImposters,omitempty"` // playerCount-1 once the count is set

	PlayerCount int      `json:"playerCount,omitempty"`
	PlayerNames []string `json:"playerNames,omitempty"`

	// Reveal phase
	CurrentName  string `json:"currentName,omitempty"`
	Position     int    `json:"position,omitempty"` // 1-based, reveal or vote cursor
	WordRevealed bool   `json:"wordRevealed,omitempty"`
	Word         string `json:"word,omitempty"` // empty for imposters
	IsImposter   bool   `json:"isImposter,omitempty"`

	// Voting phase
	Ballot    []string `json:"ballot,omitempty"`
	Selection int      `json:"selection"` // -1 when the current voter has not selected

	Results *imposter.Result `json:"results,omitempty"`
}

// RejectedMessage is sent only to the client whose input was refused.
type RejectedMessage struct {
	Type    string `json:"type"`    // "rejected"
	Message string `json:"message"` // user-facing text
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type actionRequest struct {
	client *Client
	msg    ClientMessage
}

// Hub owns one game session. All session access happens on the run loop, so
// every input is processed to completion before the next one is looked at.
type Hub struct {
	id      string
	session *imposter.Session
	words   *WordList
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time
}

func newHub(gameID string, words *WordList) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		session:    imposter.NewSession(),
		words:      words,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan actionRequest),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true
			h.mu.Unlock()

			// New spectators catch up immediately.
			c.send <- h.snapshot()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case ar := <-h.actions:
			h.handleAction(cfg, ar)
		}
	}
}

// handleAction applies one input to the session. Inputs that do not fit the
// current stage are dropped as stale; other rejections are answered to the
// sender alone, and the session stays as it was.
func (h *Hub) handleAction(cfg *Config, ar actionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	var err error

	switch ar.msg.Type {
	case "set_player_count":
		err = h.session.SetPlayerCount(ar.msg.Value)
	case "set_names":
		err = h.session.SetNames(ar.msg.Text)
	case "set_imposter_count":
		err = h.session.SetImposterCount(ar.msg.Value, h.words.Pick())
	case "show":
		_, err = h.session.RequestShow()
	case "next":
		err = h.session.RequestNext()
	case "select":
		err = h.session.SelectTarget(ar.msg.Value)
	case "confirm":
		err = h.session.ConfirmVote()
	case "reset":
		h.session = imposter.NewSession()
		logf(cfg, "GAMES: Session %s reset", h.id)
	default:
		return
	}

	switch {
	case errors.Is(err, imposter.ErrStageMismatch):
		// Stale or out-of-order event, likely a client behind on snapshots.
		return

	case errors.Is(err, imposter.ErrAlreadyRevealed):
		// Harmless; re-acknowledge with the current snapshot.

	case err != nil:
		select {
		case ar.client.send <- RejectedMessage{
			Type:    "rejected",
			Message: err.Error(),
		}:
		default:
			delete(h.clients, ar.client)
			close(ar.client.send)
		}
		return
	}

	h.broadcastStateLocked()
}

// snapshot builds a StateMessage for the session's current stage.
func (h *Hub) snapshot() StateMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() StateMessage {
	s := h.session

	msg := StateMessage{
		Type:       "game_state",
		Stage:      s.Stage.String(),
		MinPlayers: imposter.MinPlayers,
		MaxPlayers: imposter.MaxPlayers,
		Selection:  -1,
	}

	if s.PlayerCount > 0 {
		msg.PlayerCount = s.PlayerCount
		msg.PlayerNames = s.PlayerNames
		msg.MaxImposters = s.PlayerCount - 1
	}

	switch s.Stage {
	case imposter.StageRevealing:
		current, _ := s.CurrentReveal()
		msg.CurrentName = current.Name
		msg.Position = current.Index + 1
		msg.WordRevealed = s.WordRevealed
		if s.WordRevealed {
			msg.Word = current.Word
			msg.IsImposter = current.IsImposter
		}

	case imposter.StageVoting:
		voter, _ := s.CurrentVoter()
		msg.CurrentName = voter.Name
		msg.Position = voter.Index + 1
		msg.Ballot = s.PlayerNames
		msg.Selection = s.Votes[voter.Index]

	case imposter.StageFinished:
		results, _ := s.Results()
		msg.Results = &results
	}

	return msg
}

// broadcastStateLocked assumes h.mu is already held.
func (h *Hub) broadcastStateLocked() {
	msg := h.snapshotLocked()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "imposterbox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	words       *WordList
	idleTimeout time.Duration
}

func newGameManager(words *WordList, idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		words:       words,
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gameID, gm.words)
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := crand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(gm.hubs, id)
				go hub.closeAll()
			}
		}
		gm.mu.Unlock()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.actions <- actionRequest{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

//go:embed imposter/index.html
var indexHTML []byte

func getIndexHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write(indexHTML)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerImposterGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerImposterGame(cfg *Config, path string, mux *httprouter.Router, words *WordList, errs chan<- error) {
	gm := newGameManager(words, cfg.sessionTimeout)

	// Root path → redirect to new random game
	mux.GET(path, redirectNewGame(cfg, path, gm))

	// Per-game client view (HTML)
	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	// Shared assets (no gameid in route)
	mux.GET(cfg.prefix+"/assets/imposter/app.css", serveAssets(cfg, errs))
	mux.GET(cfg.prefix+"/assets/imposter/app.js", serveAssets(cfg, errs))

	// Per-game websocket
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	// Per-game QR code
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
