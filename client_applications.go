package techhatch

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/go-querystring/query"
)

const pathApplications = "/api/v1/applications"

// ApplicationQuery pages the applications of one job.
type ApplicationQuery struct {
	Page   int               `url:"page"`
	Size   int               `url:"size,omitempty"`
	Status ApplicationStatus `url:"status,omitempty"`
}

type applyRequest struct {
	JobID       int64  `json:"jobId"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

type statusRequest struct {
	Status         ApplicationStatus `json:"status"`
	RecruiterNotes string            `json:"recruiterNotes,omitempty"`
}

// Apply submits an application to a job as the signed-in candidate.
func (c *Client) Apply(ctx context.Context, jobID int64, coverLetter string) (*Application, error) {
	if err := validateID("jobId", jobID); err != nil {
		return nil, err
	}
	var app Application
	if err := c.do(ctx, http.MethodPost, pathApplications, nil, applyRequest{JobID: jobID, CoverLetter: coverLetter}, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// MyApplications lists the signed-in candidate's applications.
func (c *Client) MyApplications(ctx context.Context) ([]Application, error) {
	var page Page[Application]
	if err := c.do(ctx, http.MethodGet, pathApplications+"/my-applications", nil, nil, &page); err != nil {
		return nil, err
	}
	if page.Content == nil {
		return []Application{}, nil
	}
	return page.Content, nil
}

// ApplicationsForJob pages the applications received by one of the recruiter's jobs.
func (c *Client) ApplicationsForJob(ctx context.Context, jobID int64, q ApplicationQuery) (*Page[Application], error) {
	if err := validateID("jobId", jobID); err != nil {
		return nil, err
	}
	if q.Status != "" {
		if err := validateStatus(q.Status); err != nil {
			return nil, err
		}
	}
	values, err := query.Values(q)
	if err != nil {
		return nil, err
	}
	var page Page[Application]
	path := pathApplications + "/job/" + strconv.FormatInt(jobID, 10)
	if err := c.do(ctx, http.MethodGet, path, values, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateApplicationStatus moves an application through the hiring pipeline.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, status ApplicationStatus, notes string) (*Application, error) {
	if err := validateID("applicationId", id); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	var app Application
	path := pathApplications + "/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, nil, statusRequest{Status: status, RecruiterNotes: notes}, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
