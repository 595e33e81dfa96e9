package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/sentibot/internal/model/account"
	"github.com/zhouzirui/sentibot/internal/model/chat"
	"github.com/zhouzirui/sentibot/internal/service/auth"
	"github.com/zhouzirui/sentibot/internal/service/conversation"
)

var errNoToken = errors.New("no session token: pass --token, set SENTIBOT_TOKEN or run 'chat login'")

var (
	loginEmail    string
	loginPassword string
	loginProvider string
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}

		turn, err := session.Send(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := turn.Wait(cmd.Context()); err != nil {
			return fmt.Errorf("turn %d %s: %w", turn.ID, turn.State(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), turn.Reply())
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}

		messages, err := session.LoadHistory(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(messages) == 0 {
			fmt.Fprintln(out, "(sin mensajes)")
			return nil
		}
		for _, msg := range messages {
			who := "Tú"
			if msg.Sender == chat.SenderBot {
				who = "Bot"
			}
			fmt.Fprintf(out, "%-4s %s\n", who+":", msg.Text)
		}
		return nil
	},
}

var sentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Print the sentiment summary of the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}

		summary := session.SentimentSummary(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), summary.Text)
		if !summary.Available {
			return errors.New("sentiment unavailable")
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print the session token",
	Long: `Signs in and prints the session token to use with --token or
SENTIBOT_TOKEN. Social providers require their client id in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway := newGateway()
		ctx := cmd.Context()

		var (
			user account.User
			err  error
		)
		switch account.Provider(loginProvider) {
		case account.ProviderEmail:
			user, err = gateway.LoginWithEmail(ctx, loginEmail, loginPassword)
		case account.ProviderGoogle:
			user, err = gateway.LoginWithGoogle(ctx)
		case account.ProviderFacebook:
			user, err = gateway.LoginWithFacebook(ctx)
		default:
			return fmt.Errorf("unknown provider %q", loginProvider)
		}
		if err != nil {
			notice := auth.NoticeFor(err)
			return fmt.Errorf("%s: %s (%w)", notice.Title, notice.Message, err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Bienvenido, %s\n", user.DisplayName())
		fmt.Fprintln(cmd.OutOrStdout(), user.ID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.Flags().StringVar(&loginProvider, "provider", string(account.ProviderEmail), "email, google or facebook")
}

func newSession() (*conversation.Session, error) {
	if cfg.Token == "" {
		return nil, errNoToken
	}
	return conversation.New(api, cfg.Token, conversation.WithLogger(logger)), nil
}
