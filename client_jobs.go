package techhatch

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/go-querystring/query"
)

const pathJobs = "/api/v1/jobs"

func jobPath(id int64, suffix string) string {
	return pathJobs + "/" + strconv.FormatInt(id, 10) + suffix
}

// SearchJobs lists active jobs matching filter. Empty filter fields are not sent.
func (c *Client) SearchJobs(ctx context.Context, filter JobSearch) (*Page[Job], error) {
	if filter.Page < 0 {
		filter.Page = 0
	}
	q, err := query.Values(filter)
	if err != nil {
		return nil, err
	}
	var page Page[Job]
	if err := c.do(ctx, http.MethodGet, pathJobs, q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Job fetches one job.
func (c *Client) Job(ctx context.Context, id int64) (*Job, error) {
	if err := validateID("jobId", id); err != nil {
		return nil, err
	}
	var job Job
	if err := c.do(ctx, http.MethodGet, jobPath(id, ""), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob posts a job as the signed-in recruiter.
func (c *Client) CreateJob(ctx context.Context, in JobInput) (*Job, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var job Job
	if err := c.do(ctx, http.MethodPost, pathJobs, nil, in, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob replaces a job posting.
func (c *Client) UpdateJob(ctx context.Context, id int64, in JobInput) (*Job, error) {
	if err := validateID("jobId", id); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var job Job
	if err := c.do(ctx, http.MethodPut, jobPath(id, ""), nil, in, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	if err := validateID("jobId", id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, jobPath(id, ""), nil, nil, nil)
}

// CloseJob stops a job from accepting applications.
func (c *Client) CloseJob(ctx context.Context, id int64) (*Job, error) {
	if err := validateID("jobId", id); err != nil {
		return nil, err
	}
	var job Job
	if err := c.do(ctx, http.MethodPatch, jobPath(id, "/close"), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

type pageQuery struct {
	Page int `url:"page"`
}

// MyJobs lists the jobs posted by the signed-in recruiter.
func (c *Client) MyJobs(ctx context.Context, page int) (*Page[Job], error) {
	if page < 0 {
		page = 0
	}
	q, err := query.Values(pageQuery{Page: page})
	if err != nil {
		return nil, err
	}
	var out Page[Job]
	if err := c.do(ctx, http.MethodGet, pathJobs+"/my-jobs", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
