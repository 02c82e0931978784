package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/format"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func companyName(j techhatch.Job) string {
	if j.Company == nil {
		return ""
	}
	return j.Company.CompanyName
}

func jobRows(jobs []techhatch.Job, now time.Time) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			strconv.FormatInt(j.ID, 10),
			j.Title,
			companyName(j),
			j.Location,
			format.JobType(j.JobType),
			format.Salary(j.SalaryMin, j.SalaryMax, j.Currency),
			format.RelativeString(j.PostedDate, now),
		})
	}
	return rows
}

var jobHeaders = []string{"ID", "TITLE", "COMPANY", "LOCATION", "TYPE", "SALARY", "POSTED"}

func printPage(w io.Writer, number, totalPages, total int) {
	if totalPages == 0 {
		totalPages = 1
	}
	fmt.Fprintf(w, "Page %d of %d, %d total\n", number+1, totalPages, total)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Search, inspect and manage job postings",
	}
	cmd.AddCommand(newJobsSearchCmd(a), newJobsShowCmd(a), newJobsMineCmd(a), newJobsCloseCmd(a))
	return cmd
}

func newJobsSearchCmd(a *app) *cobra.Command {
	var q techhatch.JobSearch
	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search active jobs",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, args []string) error {
			if len(args) == 1 {
				q.Keyword = args[0]
			}
			q.JobType = strings.ToUpper(q.JobType)
			q.ExperienceLevel = strings.ToUpper(q.ExperienceLevel)

			page, err := c.SearchJobs(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(page.Content) == 0 {
				fmt.Fprintln(out, "No jobs found.")
				return nil
			}
			renderTable(out, jobHeaders, jobRows(page.Content, time.Now()))
			printPage(out, page.Number, page.TotalPages, page.TotalElements)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&q.Location, "location", "", "location contains")
	f.StringVar(&q.JobType, "type", "", "FULL_TIME, PART_TIME, CONTRACT or INTERNSHIP")
	f.StringVar(&q.ExperienceLevel, "level", "", "ENTRY, JUNIOR, MID, SENIOR or LEAD")
	f.Float64Var(&q.MinSalary, "min-salary", 0, "minimum salary")
	f.Float64Var(&q.MaxSalary, "max-salary", 0, "maximum salary")
	f.IntVar(&q.Page, "page", 0, "zero-based page")
	return cmd
}

func newJobsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			j, err := c.Job(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s at %s\n", j.Title, companyName(*j))
			fmt.Fprintf(out, "%s · %s · %s · %s\n", j.Location, format.JobType(j.JobType),
				format.WorkMode(j.WorkMode), format.ExperienceLevel(j.ExperienceLevel))
			fmt.Fprintf(out, "Salary:  %s\n", format.Salary(j.SalaryMin, j.SalaryMax, j.Currency))
			fmt.Fprintf(out, "Posted:  %s (%s)\n", format.DateString(j.PostedDate), format.RelativeString(j.PostedDate, time.Now()))
			if j.ExpiryDate != "" {
				fmt.Fprintf(out, "Expires: %s\n", format.DateString(j.ExpiryDate))
			}
			if len(j.RequiredSkills) > 0 {
				fmt.Fprintf(out, "Skills:  %s\n", strings.Join(j.RequiredSkills, ", "))
			}
			fmt.Fprintf(out, "Status:  %s, %d views, %d applications\n\n", j.Status, j.ViewCount, j.ApplicationCount)
			fmt.Fprintln(out, j.Description)
			return nil
		}),
	}
}

func newJobsMineCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List the recruiter's own postings",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			p, err := c.MyJobs(cmd.Context(), page)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(p.Content) == 0 {
				fmt.Fprintln(out, "No postings yet.")
				return nil
			}
			rows := make([][]string, 0, len(p.Content))
			for _, j := range p.Content {
				rows = append(rows, []string{
					strconv.FormatInt(j.ID, 10), j.Title, j.Status,
					strconv.Itoa(j.ApplicationCount), strconv.Itoa(j.ViewCount),
				})
			}
			renderTable(out, []string{"ID", "TITLE", "STATUS", "APPLICATIONS", "VIEWS"}, rows)
			printPage(out, p.Number, p.TotalPages, p.TotalElements)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page")
	return cmd
}

func newJobsCloseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Stop accepting applications for a posting",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			j, err := c.CloseJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d is now %s.\n", j.ID, j.Status)
			return nil
		}),
	}
}
