package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

type governorateEntry struct {
	Name        string   `json:"name"`
	Delegations []string `json:"delegations"`
}

type datasetPayload struct {
	Version      string             `json:"version"`
	LastUpdated  string             `json:"lastUpdated"`
	Governorates []governorateEntry `json:"governorates"`
}

func main() {
	var (
		port = flag.String("port", "9098", "port to listen on")
		data = flag.String("data", "mock-locations.json", "path to mock dataset file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload datasetPayload
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/locations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock locations listening on %s (%d governorates)", addr, len(payload.Governorates))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
