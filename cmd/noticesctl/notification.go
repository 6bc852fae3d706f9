package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsenecal/netbox-notices/internal/notification"
	"github.com/jsenecal/netbox-notices/internal/storage"
)

var (
	notifListStatus string
	notifListLimit  int
	notifListOffset int

	transitionActor string
	transitionNote  string
	transitionAt    string
)

var notificationCmd = &cobra.Command{
	Use:   "notification",
	Short: "Notification management commands",
}

var notifListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE:  runNotifList,
}

var notifShowCmd = &cobra.Command{
	Use:   "show <notification_id>",
	Short: "Show notification details",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifShow,
}

var notifTransitionCmd = &cobra.Command{
	Use:   "transition <notification_id> <status>",
	Short: "Transition a notification (ready, sent, delivered, failed)",
	Args:  cobra.ExactArgs(2),
	RunE:  runNotifTransition,
}

var notifAuditCmd = &cobra.Command{
	Use:   "audit <notification_id>",
	Short: "Show a notification's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifAudit,
}

func init() {
	notifListCmd.Flags().StringVar(&notifListStatus, "status", "", "Filter by status (draft, ready, sent, delivered, failed)")
	notifListCmd.Flags().IntVar(&notifListLimit, "limit", 50, "Maximum number of notifications to show")
	notifListCmd.Flags().IntVar(&notifListOffset, "offset", 0, "Number of notifications to skip")

	notifTransitionCmd.Flags().StringVar(&transitionActor, "actor", "", "Actor recorded in the audit trail")
	notifTransitionCmd.Flags().StringVar(&transitionNote, "note", "", "Note recorded in the audit trail")
	notifTransitionCmd.Flags().StringVar(&transitionAt, "at", "", "Transition timestamp (RFC3339, defaults to now)")

	notificationCmd.AddCommand(notifListCmd, notifShowCmd, notifTransitionCmd, notifAuditCmd)
	rootCmd.AddCommand(notificationCmd)
}

func runNotifList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := storage.ListFilter{
		Status: notification.Status(notifListStatus),
		Limit:  notifListLimit,
		Offset: notifListOffset,
	}

	records, err := store.List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No notifications found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTEMPLATE\tSUBJECT\tRECIPIENTS\tUPDATED")
	for _, rec := range records {
		subject := rec.Subject
		if len(subject) > 50 {
			subject = subject[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.ID, rec.Status, rec.TemplateSlug, subject,
			len(rec.Recipients), rec.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runNotifShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runNotifTransition(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := notification.Options{
		Actor: transitionActor,
		Note:  transitionNote,
	}
	if transitionAt != "" {
		at, err := time.Parse(time.RFC3339, transitionAt)
		if err != nil {
			return fmt.Errorf("invalid --at timestamp: %w", err)
		}
		opts.At = &at
	}

	machine := notification.NewMachine(store)
	rec, err := machine.TransitionTo(context.Background(), args[0], notification.Status(args[1]), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Notification %s is now %s\n", rec.ID, rec.Status)
	return nil
}

func runNotifAudit(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Audit(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No audit entries")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tTRANSITION\tKIND\tACTOR\tNOTE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s -> %s\t%s\t%s\t%s\n",
			entry.Timestamp.Format(time.RFC3339), entry.From, entry.To,
			entry.Kind, entry.Actor, entry.Note)
	}
	return w.Flush()
}
