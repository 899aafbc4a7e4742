package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the intake service.
type Server struct {
	Addr        string
	Environment string

	// Remote intake endpoint receiving finalized applications.
	IntakeURL    string
	IntakeAPIKey string

	// Best-effort external IP resolution used by the audit trail collector
	// when the request metadata carries no usable client address.
	IPResolverURL string

	// Drafts idle longer than this are swept from the in-memory store.
	DraftTTL time.Duration

	// Delay before the confirmation broadcast after a successful submission.
	ConfirmDelay time.Duration

	// Realtime assistant session settings. The prompt, voice, and model are
	// opaque configuration relayed to the session service.
	AssistantSigningKey  string
	AssistantRealtimeURL string
	AssistantModel       string
	AssistantVoice       string
	AssistantTokenTTL    time.Duration

	// Submission summary notifications (fire-and-forget).
	SMTPAddr         string
	SMTPFrom         string
	NotifyRecipients []string

	// CIDR prefixes trusted to set X-Forwarded-For.
	TrustedProxies []string
}

const (
	defaultDraftTTL          = 24 * time.Hour
	defaultConfirmDelay      = 2 * time.Second
	defaultAssistantTokenTTL = 60 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                 getEnv("BRIGHTPATH_ADDR", ":8080"),
		Environment:          getEnv("BRIGHTPATH_ENV", "dev"),
		IntakeURL:            os.Getenv("INTAKE_URL"),
		IntakeAPIKey:         os.Getenv("INTAKE_API_KEY"),
		IPResolverURL:        getEnv("IP_RESOLVER_URL", "https://api.ipify.org?format=json"),
		DraftTTL:             getDuration("DRAFT_TTL", defaultDraftTTL),
		ConfirmDelay:         getDuration("CONFIRM_DELAY", defaultConfirmDelay),
		AssistantSigningKey:  getEnv("ASSISTANT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AssistantRealtimeURL: os.Getenv("ASSISTANT_REALTIME_URL"),
		AssistantModel:       getEnv("ASSISTANT_MODEL", "gpt-realtime"),
		AssistantVoice:       getEnv("ASSISTANT_VOICE", "alloy"),
		AssistantTokenTTL:    getDuration("ASSISTANT_TOKEN_TTL", defaultAssistantTokenTTL),
		SMTPAddr:             os.Getenv("SMTP_ADDR"),
		SMTPFrom:             os.Getenv("SMTP_FROM"),
	}

	if v := os.Getenv("NOTIFY_RECIPIENTS"); v != "" {
		cfg.NotifyRecipients = splitAndTrim(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitAndTrim(v)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
