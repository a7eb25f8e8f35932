// Classifier Simulator - local stand-in for the inference service.
// Accepts frames over WebSocket and replies with a scripted cycle of
// classified states, so a full session can run without a camera or model.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

type reply struct {
	EyeDirection  string `json:"eye_direction"`
	HeadDirection string `json:"head_direction"`
	MouthState    string `json:"mouth_state"`
}

// script cycles through a plausible interview posture: mostly centered and
// speaking, with occasional glances away and silent stretches.
var script = []reply{
	{EyeDirection: "Looking Up", HeadDirection: "Center", MouthState: "Speaking"},
	{EyeDirection: "Looking Up", HeadDirection: "Center", MouthState: "Speaking"},
	{EyeDirection: "Looking Left", HeadDirection: "Center", MouthState: "Speaking"},
	{EyeDirection: "Looking Up", HeadDirection: "Center", MouthState: "Silent"},
	{EyeDirection: "Looking Down", HeadDirection: "Looking Down", MouthState: "Silent"},
	{EyeDirection: "Looking Up", HeadDirection: "Center", MouthState: "Speaking"},
	{EyeDirection: "Looking Right", HeadDirection: "Looking Right", MouthState: "Speaking"},
	{EyeDirection: "Looking Up", HeadDirection: "Center", MouthState: "Speaking"},
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
}

func wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("Client connected: %s", r.RemoteAddr)

	// One reply per received frame, cycling through the script
	step := 0
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("Client disconnected: %v", err)
			return
		}
		if err := conn.WriteJSON(script[step%len(script)]); err != nil {
			log.Printf("Write error: %v", err)
			return
		}
		step++
	}
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	http.HandleFunc("/ws", wsHandler)
	log.Printf("Classifier simulator listening on %s (endpoint /ws)", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
