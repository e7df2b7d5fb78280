package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"
	"fact-registration/internal/service"
)

func newMatchLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match-locations",
		Short: "Assign every workshop a room and mail the result to the admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			svc := service.NewLocationAssignmentService(
				repository.NewPostgresWorkshopsRepository(d.db),
				repository.NewPostgresLocationsRepository(d.db),
				d.notifier, d.cfg.Notify.AdminRecipients, d.cfg.Event.Name, d.log)
			report, err := svc.Run(cmd.Context(), domain.SystemCaller())
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			for _, s := range report.Sessions {
				if s.OK {
					fmt.Printf("session %d: %d workshops placed\n", s.Session, s.Assigned)
				} else {
					fmt.Printf("session %d: not updated (%s)\n", s.Session, s.Error)
				}
			}
			if report.NotifyError != "" {
				fmt.Fprintf(os.Stderr, "warning: report not delivered: %s\n", report.NotifyError)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the run report as JSON")
	return cmd
}

func newSendUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-update",
		Short: "Mail the delegate roster workbook to the admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			svc := service.NewRegistrationUpdateService(
				repository.NewPostgresWorkshopsRepository(d.db),
				repository.NewPostgresLocationsRepository(d.db),
				repository.NewPostgresDelegatesRepository(d.db),
				d.notifier, d.cfg.Notify.AdminRecipients, d.cfg.Event.Name, d.log)
			if err := svc.SendUpdate(cmd.Context(), domain.SystemCaller()); err != nil {
				return err
			}
			fmt.Println("registration update sent")
			return nil
		},
	}
}
