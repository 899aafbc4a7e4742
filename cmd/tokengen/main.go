// Package main provides a CLI tool for minting assistant session tokens for
// local testing. These tokens use the dev signing key and will NOT work
// against a production deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"brightpath/internal/assistant"
)

const (
	// Dev signing key, matches config.go when ASSISTANT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultModel = "gpt-realtime"
	defaultVoice = "alloy"
	defaultTTL   = 60 * time.Second
)

func main() {
	key := flag.String("key", devSigningKey, "Signing key")
	model := flag.String("model", defaultModel, "Realtime model")
	voice := flag.String("voice", defaultVoice, "Session voice")
	ttl := flag.Duration("ttl", defaultTTL, "Token time-to-live")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	issuer := assistant.NewTokenIssuer(*key, *model, *voice, *ttl)
	cred, err := issuer.Issue(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to mint token:", err)
		os.Exit(1)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(cred, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Println("Session token (expires", cred.ExpiresAt.Format(time.RFC3339), "):")
	fmt.Println()
	fmt.Println(cred.Token)
	fmt.Println()
	fmt.Println("Usage: curl -X POST http://localhost:8080/assistant/token")
}
