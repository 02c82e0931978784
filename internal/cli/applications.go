package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/format"
	"github.com/spf13/cobra"
)

func newApplyCmd(a *app) *cobra.Command {
	var coverLetter string
	cmd := &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := c.Apply(cmd.Context(), id, coverLetter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %d submitted (%s).\n", res.ID, format.ApplicationStatus(string(res.Status)))
			return nil
		}),
	}
	cmd.Flags().StringVar(&coverLetter, "cover-letter", "", "cover letter text")
	return cmd
}

func newApplicationsCmd(a *app) *cobra.Command {
	var jobID int64
	var status string
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "List your applications, or the applications to one of your jobs",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			out := cmd.OutOrStdout()
			now := time.Now()

			if jobID == 0 {
				apps, err := c.MyApplications(cmd.Context())
				if err != nil {
					return err
				}
				if len(apps) == 0 {
					fmt.Fprintln(out, "No applications yet.")
					return nil
				}
				rows := make([][]string, 0, len(apps))
				for _, ap := range apps {
					var title, company string
					if ap.Job != nil {
						title, company = ap.Job.Title, ap.Job.CompanyName
					}
					rows = append(rows, []string{
						strconv.FormatInt(ap.ID, 10), title, company,
						format.ApplicationStatus(string(ap.Status)),
						format.RelativeString(ap.AppliedDate, now),
					})
				}
				renderTable(out, []string{"ID", "JOB", "COMPANY", "STATUS", "APPLIED"}, rows)
				return nil
			}

			page, err := c.ApplicationsForJob(cmd.Context(), jobID, techhatch.ApplicationQuery{
				Status: techhatch.ApplicationStatus(strings.ToUpper(status)),
			})
			if err != nil {
				return err
			}
			if len(page.Content) == 0 {
				fmt.Fprintln(out, "No applications yet.")
				return nil
			}
			rows := make([][]string, 0, len(page.Content))
			for _, ap := range page.Content {
				var name, email string
				if ap.Candidate != nil {
					name, email = ap.Candidate.FullName, ap.Candidate.Email
				}
				rows = append(rows, []string{
					strconv.FormatInt(ap.ID, 10), name, email,
					format.ApplicationStatus(string(ap.Status)),
					format.RelativeString(ap.AppliedDate, now),
				})
			}
			renderTable(out, []string{"ID", "CANDIDATE", "EMAIL", "STATUS", "APPLIED"}, rows)
			printPage(out, page.Number, page.TotalPages, page.TotalElements)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&jobID, "job", 0, "list applications received for this job")
	cmd.Flags().StringVar(&status, "status", "", "filter by status, with --job")
	cmd.AddCommand(newApplicationStatusCmd(a))
	return cmd
}

func newApplicationStatusCmd(a *app) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "status <application-id> <status>",
		Short: "Move an application to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := techhatch.ApplicationStatus(strings.ToUpper(args[1]))
			res, err := c.UpdateApplicationStatus(cmd.Context(), id, status, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %d is now %s.\n", res.ID, format.ApplicationStatus(string(res.Status)))
			return nil
		}),
	}
	cmd.Flags().StringVar(&notes, "notes", "", "recruiter notes")
	return cmd
}
