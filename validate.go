package techhatch

import (
	"sort"
	"strings"

	"github.com/MrEthical07/techhatch/format"
	"github.com/MrEthical07/techhatch/transport"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	jobTypes         = codes(format.JobTypes)
	workModes        = codes(format.WorkModes)
	experienceLevels = codes(format.ExperienceLevels)
	appStatuses      = codes(format.ApplicationStatuses)
	companySizes     = anySlice(format.CompanySizes)
)

func codes(labels map[string]string) []any {
	return anySlice(format.Codes(labels))
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// fieldError converts an ozzo error set into a single validation error naming the
// first offending field in alphabetical order.
func fieldError(err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validation.Errors)
	if !ok || len(errs) == 0 {
		return transport.Validation("", err.Error(), err)
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	first := fields[0]
	return transport.Validation(first, first+": "+errs[first].Error(), err)
}

func (in JobInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Location, validation.Required),
		validation.Field(&in.JobType, validation.Required, validation.In(jobTypes...)),
		validation.Field(&in.WorkMode, validation.Required, validation.In(workModes...)),
		validation.Field(&in.ExpLevel, validation.Required, validation.In(experienceLevels...)),
		validation.Field(&in.SalaryMin, validation.Min(0.0)),
		validation.Field(&in.SalaryMax, validation.Min(in.SalaryMin)),
		validation.Field(&in.RequiredSkills, validation.Required),
	)
	return fieldError(err)
}

func (in CandidateProfileInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Education, validation.Required),
		validation.Field(&in.Skills, validation.Required),
		validation.Field(&in.ExperienceYears, validation.Min(0)),
		validation.Field(&in.ResumeURL, is.URL),
		validation.Field(&in.ProfilePictureURL, is.URL),
		validation.Field(&in.LinkedinURL, is.URL),
		validation.Field(&in.GithubURL, is.URL),
		validation.Field(&in.PortfolioURL, is.URL),
	)
	return fieldError(err)
}

func (in RecruiterProfileInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.CompanyName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.CompanyDescription, validation.Required),
		validation.Field(&in.CompanySize, validation.Required, validation.In(companySizes...)),
		validation.Field(&in.CompanyLogoURL, is.URL),
		validation.Field(&in.CompanyWebsite, is.URL),
	)
	return fieldError(err)
}

func validateStatus(status ApplicationStatus) error {
	s := strings.TrimSpace(string(status))
	if err := validation.Validate(s, validation.Required, validation.In(appStatuses...)); err != nil {
		return transport.Validation("status", "unknown application status", err)
	}
	return nil
}

func validateID(field string, id int64) error {
	if err := validation.Validate(id, validation.Required, validation.Min(int64(1))); err != nil {
		return transport.Validation(field, field+" must be a positive id", err)
	}
	return nil
}
