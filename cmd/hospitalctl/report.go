package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hospitalcore/pkg/domain"
)

func reportCmd(a *app) *cobra.Command {
	var specialty string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print physicians of a specialty, upcoming appointments and totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := domain.ParseSpecialty(specialty)
			if err != nil {
				return err
			}
			return a.report(cmd.Context(), sp)
		},
	}
	cmd.Flags().StringVar(&specialty, "specialty", string(domain.SpecialtyDermatology), "specialty to list physicians for")
	return cmd
}

func demoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed, report, complete the next appointment and print totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.seed(ctx); err != nil {
				return err
			}
			if err := a.listPhysicians(ctx, domain.SpecialtyDermatology); err != nil {
				return err
			}
			upcoming, err := a.listUpcoming(ctx)
			if err != nil {
				return err
			}
			if len(upcoming) > 0 {
				next := upcoming[0]
				fmt.Fprintf(a.out, "\nPrevious status of appointment %s: %s\n", next.ID(), next.Status())
				done, _, err := a.svc.UpdateAppointmentStatus(ctx, next.ID(), domain.AppointmentCompleted)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "New status: %s\n", done.Status())
			}
			return a.summary(ctx)
		},
	}
}

func (a *app) report(ctx context.Context, sp domain.Specialty) error {
	if err := a.listPhysicians(ctx, sp); err != nil {
		return err
	}
	if _, err := a.listUpcoming(ctx); err != nil {
		return err
	}
	return a.summary(ctx)
}

func (a *app) listPhysicians(ctx context.Context, sp domain.Specialty) error {
	physicians, err := a.svc.PhysiciansBySpecialty(ctx, sp)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n-- Physicians by specialty (%s) --\n", sp)
	for _, m := range physicians {
		fmt.Fprintf(a.out, "   * %s, %s | Lic: %s\n", strings.ToUpper(m.Surname()), m.Name(), m.License())
	}
	return nil
}

func (a *app) listUpcoming(ctx context.Context) ([]domain.Appointment, error) {
	upcoming, err := a.svc.UpcomingAppointments(ctx)
	if err != nil {
		return nil, err
	}
	surnames := make(map[domain.ID]string)
	err = a.svc.Store().View(ctx, func(v domain.TransactionView) error {
		for _, appt := range upcoming {
			if p, ok := v.Patient(appt.PatientID()); ok {
				surnames[appt.ID()] = p.Surname()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, "\n-- Upcoming appointments (earliest first) --")
	for _, appt := range upcoming {
		fmt.Fprintf(a.out, "   • %s | Patient: %s | %s | $%s\n",
			appt.At().Format(time.RFC3339), surnames[appt.ID()], appt.Status(), formatCents(appt.AmountCents()))
	}
	return upcoming, nil
}

func (a *app) summary(ctx context.Context) error {
	h, found, err := a.svc.FindHospitalByName(ctx, demoHospital)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("hospital %q not found; run seed first", demoHospital)
	}
	sum, err := a.svc.Summary(ctx, h.ID())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n=== %s ===\n", sum.Hospital.Name())
	fmt.Fprintf(a.out, "Registered patients     : %d\n", sum.Patients)
	fmt.Fprintf(a.out, "Completed appointments  : %d\n", sum.Appointments[domain.AppointmentCompleted])
	fmt.Fprintf(a.out, "Registered rooms        : %d\n", sum.Rooms)
	return nil
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
