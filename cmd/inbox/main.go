package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"smsvault/internal/client"
	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/format"
	"smsvault/internal/logger"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"
)

const version = "0.1.0"

func main() {
	godotenv.Load()

	app := cli.NewApp()
	app.Name = "inbox"
	app.Usage = "Read and send messages stored by the SMS gateway API"
	app.Version = version
	app.Flags = getFlags()
	app.Commands = []cli.Command{
		{
			Name:   "list",
			Usage:  "print every message, newest first",
			Action: listMessages,
		},
		{
			Name:      "get",
			Usage:     "print one message",
			ArgsUsage: "ID",
			Action:    getMessage,
		},
		{
			Name:      "send",
			Usage:     "store a message as the gateway would",
			ArgsUsage: "TEXT",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "sender, s", Usage: "sender name or number", Value: "inbox"},
				cli.StringFlag{Name: "ts", Usage: "timestamp text (default: now, RFC 3339)"},
				cli.BoolFlag{Name: "hex", Usage: "send sender and body as UTF-16 hex, like the modem"},
			},
			Action: sendMessage,
		},
		{
			Name:  "token",
			Usage: "mint a Bearer token signed with the auth key",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "subject", Value: "inbox"},
				cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
			},
			Action: mintToken,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "url, u",
			Usage:  "API base `URL`",
			Value:  "http://localhost:8787",
			EnvVar: "API_URL",
		},
		cli.StringFlag{
			Name:   "auth-key, k",
			Usage:  "shared auth key",
			EnvVar: "AUTH_KEY",
		},
		cli.StringFlag{
			Name:   "encryption-key, e",
			Usage:  "decrypt bodies locally with this key",
			EnvVar: "ENCRYPTION_KEY",
		},
		cli.StringFlag{
			Name:   "token, t",
			Usage:  "use this Bearer token instead of the auth key",
			EnvVar: "INBOX_TOKEN",
		},
		cli.StringFlag{
			Name:  "level, l",
			Usage: "logging level [debug|info|warn|error]",
			Value: "warn",
		},
	}
}

func newClient(c *cli.Context) (*client.Client, error) {
	log, err := logger.NewLogger(config.LoggingConfig{Level: c.GlobalString("level"), OutputPath: "stderr"})
	if err != nil {
		return nil, err
	}

	authKey := c.GlobalString("auth-key")
	token := c.GlobalString("token")
	if authKey == "" && token == "" {
		return nil, fmt.Errorf("either --auth-key or --token is required")
	}

	var key []byte
	if k := c.GlobalString("encryption-key"); k != "" {
		key = []byte(k)
	}

	api := client.New(c.GlobalString("url"), authKey, key, log)
	if token != "" {
		api.UseBearer(token)
	}
	return api, nil
}

func listMessages(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	messages, err := api.List(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSENDER\tMESSAGE")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", idOf(m), m.TS, m.Sender, oneLine(m.SMS))
	}
	return w.Flush()
}

func getMessage(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: inbox get ID", 2)
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	m, err := api.Get(context.Background(), c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("ID:     %s\nTime:   %s\nSender: %s\n\n%s\n", idOf(m), m.TS, m.Sender, m.SMS)
	return nil
}

func sendMessage(c *cli.Context) error {
	text := strings.Join(c.Args(), " ")
	if text == "" {
		return cli.NewExitError("usage: inbox send [--sender NAME] TEXT", 2)
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	ts := c.String("ts")
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	msg := common.Message{Sender: c.String("sender"), SMS: text, TS: ts}

	if c.Bool("hex") {
		if msg.SMS, err = format.EncodeUTF16Hex(msg.SMS); err != nil {
			return err
		}
		if msg.Sender, err = format.EncodeUTF16Hex(msg.Sender); err != nil {
			return err
		}
	}

	id, err := api.Send(context.Background(), msg)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func mintToken(c *cli.Context) error {
	authKey := c.GlobalString("auth-key")
	if authKey == "" {
		return fmt.Errorf("--auth-key is required to sign a token")
	}

	token, err := common.GenerateToken([]byte(authKey), c.String("subject"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func idOf(m *common.Message) string {
	if m.ID == nil {
		return "-"
	}
	return *m.ID
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
