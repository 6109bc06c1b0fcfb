package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cl, err := openClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cl.Close()
		s := cl.Session()
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", s.Email, s.UID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials and show the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cl, err := openClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cl.Close()
		s := cl.Session()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "signed in as %s (%s)\n", s.Email, s.UID)
		if !s.ExpiresAt.IsZero() {
			fmt.Fprintf(out, "session expires %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the journal and print the page as HTML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}

		ctx := cmd.Context()
		cl, err := openClient(ctx, false)
		if err != nil {
			return err
		}
		defer cl.Close()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			if cl.Session() == nil {
				return domain.ErrNotSignedIn
			}
			if err := cl.ctrl.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if once {
				return nil
			}
		}
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Post a text message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		if !cmd.Flags().Changed("category") {
			category = cfg.Category
		}
		cl, err := openClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cl.Close()

		if err := cl.ctrl.SendText(strings.Join(args, " "), category); err != nil {
			return err
		}
		return cl.ctrl.Drain(cmd.Context())
	},
}

var sendImageCmd = &cobra.Command{
	Use:   "send-image <file>",
	Short: "Share an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := readFile(args[0])
		if err != nil {
			return err
		}
		cl, err := openClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cl.Close()

		if err := cl.ctrl.SendImage(f); err != nil {
			return err
		}
		if err := cl.ctrl.Drain(cmd.Context()); err != nil {
			return err
		}
		log.Info().Str("file", f.Name).Int("bytes", len(f.Data)).Msg("image shared")
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <message-id> <text>",
	Short: "Add a comment to a message (staff only)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, err := openClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cl.Close()

		if err := cl.ctrl.SubmitComment(args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		return cl.ctrl.Drain(cmd.Context())
	},
}

// readFile loads path as an upload. The declared type comes from the
// extension; an unknown extension leaves it to content sniffing.
func readFile(path string) (domain.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	}, nil
}
