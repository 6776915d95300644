// Command scribe runs the content engine HTTP server. All credentials and
// site branding come from environment variables.
package main

import (
	"log"
	"strconv"

	"github.com/scribeworks/scribe"
	"github.com/scribeworks/scribe/outreach"
)

func main() {
	cfg := scribe.Config{
		SiteName:        scribe.EnvOr("SITE_NAME", "Blog"),
		SiteURL:         scribe.MustEnv("SITE_URL"),
		SiteDescription: scribe.EnvOr("SITE_DESCRIPTION", ""),
		Founder:         scribe.EnvOr("SITE_FOUNDER", ""),

		Addr:         scribe.EnvOr("ADDR", ":8080"),
		DatabasePath: scribe.EnvOr("DATABASE_PATH", "data/outreach.db"),
		APIKey:       scribe.MustEnv("SCRIBE_API_KEY"),

		GeminiAPIKey: scribe.MustEnv("GEMINI_API_KEY"),
		GeminiModel:  scribe.EnvOr("GEMINI_MODEL", ""),
		SerperAPIKey: scribe.MustEnv("SERPER_API_KEY"),
		GetimgAPIKey: scribe.EnvOr("GETIMG_API_KEY", ""),

		WordPressUser:     scribe.EnvOr("WP_USERNAME", ""),
		WordPressPassword: scribe.EnvOr("WP_PASSWORD", ""),

		MailboxLayerAPIKey: scribe.EnvOr("MAILBOXLAYER_API_KEY", ""),
		SMTP: outreach.SMTPConfig{
			Host:     scribe.EnvOr("SMTP_SERVER", "smtp.office365.com"),
			Port:     envInt("SMTP_PORT", 587),
			Username: scribe.EnvOr("EMAIL_USERNAME", ""),
			Password: scribe.EnvOr("EMAIL_PASSWORD", ""),
		},

		MaxEmails: envInt("MAX_EMAILS", 10),
	}

	app := scribe.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func envInt(key string, fallback int) int {
	v := scribe.EnvOr(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("scribe: %s must be an integer, got %q", key, v)
	}
	return n
}
