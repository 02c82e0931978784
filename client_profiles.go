package techhatch

import (
	"context"
	"net/http"
)

const (
	pathCandidateProfile = "/api/v1/profile/candidate"
	pathRecruiterProfile = "/api/v1/profile/recruiter"
)

// CandidateProfile fetches the signed-in candidate's profile. A profile that was
// never created is reported as (nil, false, nil).
func (c *Client) CandidateProfile(ctx context.Context) (*CandidateProfile, bool, error) {
	var p CandidateProfile
	if err := c.do(ctx, http.MethodGet, pathCandidateProfile+"/me", nil, nil, &p); err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &p, true, nil
}

// SaveCandidateProfile creates or replaces the candidate profile.
func (c *Client) SaveCandidateProfile(ctx context.Context, in CandidateProfileInput) (*CandidateProfile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p CandidateProfile
	if err := c.do(ctx, http.MethodPost, pathCandidateProfile, nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RecruiterProfile fetches the signed-in recruiter's company profile, with the same
// not-found convention as CandidateProfile.
func (c *Client) RecruiterProfile(ctx context.Context) (*RecruiterProfile, bool, error) {
	var p RecruiterProfile
	if err := c.do(ctx, http.MethodGet, pathRecruiterProfile+"/me", nil, nil, &p); err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &p, true, nil
}

func (c *Client) SaveRecruiterProfile(ctx context.Context, in RecruiterProfileInput) (*RecruiterProfile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p RecruiterProfile
	if err := c.do(ctx, http.MethodPost, pathRecruiterProfile, nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
