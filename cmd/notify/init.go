package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const exampleInfrastructure = `{
  "units": [
    {
      "name": "335",
      "label": "Trajekt Preko - Zadar",
      "tags": "preko,zadar - preko",
      "islands": ["ugljan", "osljak"]
    },
    {
      "name": "d8",
      "label": "Državna cesta D8",
      "tags": "ražanac",
      "islands": ["pag"]
    }
  ],
  "suppressions": [
    {"tag": "poljana", "when_present": "poljana branka stojakovića"}
  ]
}
`

const exampleIslands = `{
  "islands": [
    {
      "name": "ugljan",
      "label": "Ugljan",
      "settlements": [
        {"name": "preko", "tags": "preko"},
        {"name": "poljana", "tags": "poljana"},
        {"name": "sutomiscica", "tags": "sutomišćica,sutomiscica"}
      ]
    },
    {
      "name": "pag",
      "label": "Pag",
      "settlements": [
        {"name": "stara-novalja", "tags": "stara novalja,staroj novalji"}
      ]
    }
  ]
}
`

const exampleContacts = `{
  "contacts": [
    {"island": "ugljan", "contacts": ["subscriber@example.hr"]},
    {"island": "pag", "contacts": ["subscriber@example.hr"]}
  ]
}
`

const exampleEnv = `# Geography and subscriber files.
INFRASTRUCTURE_FILES=config/infrastructure.json
ISLANDS_FILE=config/islands.json
CONTACTS_FILE=config/contacts.json
LEDGER_DIR=data

# Watcher behaviour.
POLL_INTERVAL=15m
REQUEST_TIMEOUT=20s
DOWNLOAD_DELAY=2s

# Mail delivery. Leaving MAIL_API_KEY empty keeps the watcher in dry-run mode.
MAIL_API_KEY=
MAIL_SENDER_EMAIL=
MAIL_SENDER_NAME=Island Notify
MAIL_SUBJECT_PREFIX=

# Optional Kafka audit stream. Leaving KAFKA_BROKERS empty disables it.
KAFKA_BROKERS=
KAFKA_AUDIT_TOPIC=island-notify-audit
`

func initCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write example geography, contact, and env files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			files := []struct {
				path    string
				content string
			}{
				{filepath.Join(dir, "infrastructure.json"), exampleInfrastructure},
				{filepath.Join(dir, "islands.json"), exampleIslands},
				{filepath.Join(dir, "contacts.json"), exampleContacts},
				{".env.example", exampleEnv},
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			for _, f := range files {
				if _, err := os.Stat(f.path); err == nil {
					fmt.Printf("  skip %s (exists)\n", f.path)
					continue
				}
				if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", f.path, err)
				}
				fmt.Printf("  wrote %s\n", f.path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "config", "directory for the geography files")
	return cmd
}
