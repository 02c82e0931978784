package techhatch

import (
	"time"

	"github.com/MrEthical07/techhatch/internal/flows"
	"github.com/MrEthical07/techhatch/jwt"
	"github.com/MrEthical07/techhatch/session"
)

// Role is the account role embedded in credentials.
type Role = jwt.Role

const (
	RoleCandidate = jwt.RoleCandidate
	RoleRecruiter = jwt.RoleRecruiter
)

// Session is the authenticated identity, derived from the credential.
type Session = session.Session

// AuthState is the position in the two-step auth flow.
type AuthState = flows.State

const (
	StateAnonymous     = flows.StateAnonymous
	StateOTPPending    = flows.StateOTPPending
	StateAuthenticated = flows.StateAuthenticated
)

// OTPPurpose is the reason an OTP challenge was issued.
type OTPPurpose = flows.Purpose

const (
	PurposeLogin        = flows.PurposeLogin
	PurposeRegistration = flows.PurposeRegistration
)

type (
	// Challenge is a pending OTP verification.
	Challenge = flows.Challenge
	// LoginResult is returned by VerifyLoginOTP.
	LoginResult = flows.LoginOutcome
	// RegistrationResult is returned by VerifyRegistrationOTP.
	RegistrationResult = flows.RegistrationResponse
	// OTPAck is the backend acknowledgment of an OTP issuance.
	OTPAck = flows.OTPAck
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// CurrentUser is the payload of GET /auth/me.
type CurrentUser struct {
	UserID             jwt.UserID `json:"userId"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	AccountStatus      string     `json:"accountStatus,omitempty"`
	VerificationStatus string     `json:"verificationStatus,omitempty"`
}

/*
====================================
JOBS
====================================
*/

// JobSearch is the query of GET /jobs. Zero fields are omitted.
type JobSearch struct {
	Keyword         string    `url:"keyword,omitempty"`
	Location        string    `url:"location,omitempty"`
	ExperienceLevel string    `url:"experienceLevel,omitempty"`
	JobType         string    `url:"jobType,omitempty"`
	MinSalary       float64   `url:"minSalary,omitempty"`
	MaxSalary       float64   `url:"maxSalary,omitempty"`
	DateFrom        time.Time `url:"dateFrom,omitempty" layout:"2006-01-02T15:04:05"`
	DateTo          time.Time `url:"dateTo,omitempty" layout:"2006-01-02T15:04:05"`
	Page            int       `url:"page"`
}

// JobInput is the body of job create and update.
type JobInput struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Requirements     string     `json:"requirements,omitempty"`
	Responsibilities string     `json:"responsibilities,omitempty"`
	Location         string     `json:"location"`
	JobType          string     `json:"jobType"`
	WorkMode         string     `json:"workMode"`
	ExpLevel         string     `json:"expLevel"`
	SalaryMin        float64    `json:"salaryMin,omitempty"`
	SalaryMax        float64    `json:"salaryMax,omitempty"`
	Currency         string     `json:"currency,omitempty"`
	RequiredSkills   []string   `json:"requiredSkills"`
	ExpiryDate       *LocalTime `json:"expiryDate,omitempty"`
}

// Company is the employer summary embedded in a job.
type Company struct {
	RecruiterID    int64  `json:"recruiterId"`
	CompanyName    string `json:"companyName"`
	CompanyLogoURL string `json:"companyLogoUrl,omitempty"`
	Location       string `json:"location,omitempty"`
}

// Job is a job posting.
type Job struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Requirements     string   `json:"requirements,omitempty"`
	Responsibilities string   `json:"responsibilities,omitempty"`
	Location         string   `json:"location"`
	JobType          string   `json:"jobType"`
	WorkMode         string   `json:"workMode"`
	ExperienceLevel  string   `json:"experienceLevel"`
	SalaryMin        float64  `json:"salaryMin,omitempty"`
	SalaryMax        float64  `json:"salaryMax,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	SalaryRange      string   `json:"salaryRange,omitempty"`
	RequiredSkills   []string `json:"requiredSkills"`
	Status           string   `json:"status"`
	PostedDate       string   `json:"postedDate,omitempty"`
	ExpiryDate       string   `json:"expiryDate,omitempty"`
	ViewCount        int      `json:"viewCount"`
	ApplicationCount int      `json:"applicationCount"`
	Company          *Company `json:"company,omitempty"`
	Message          string   `json:"message,omitempty"`
}

/*
====================================
APPLICATIONS
====================================
*/

// ApplicationStatus is the recruiter-controlled state of an application.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "APPLIED"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusShortlisted ApplicationStatus = "SHORTLISTED"
	StatusInterview   ApplicationStatus = "INTERVIEW"
	StatusOffered     ApplicationStatus = "OFFERED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

// ApplicationJob is the job summary embedded in an application.
type ApplicationJob struct {
	JobID       int64  `json:"jobId"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	JobType     string `json:"jobType,omitempty"`
}

// ApplicationCandidate is the candidate summary embedded in an application.
type ApplicationCandidate struct {
	CandidateID     int64  `json:"candidateId"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	ResumeURL       string `json:"resumeUrl,omitempty"`
	ExperienceYears int    `json:"experienceYears"`
	Location        string `json:"location,omitempty"`
}

// Application is a job application.
type Application struct {
	ID             int64                 `json:"id"`
	Status         ApplicationStatus     `json:"status"`
	CoverLetter    string                `json:"coverLetter,omitempty"`
	RecruiterNotes string                `json:"recruiterNotes,omitempty"`
	AppliedDate    string                `json:"appliedDate,omitempty"`
	LastUpdated    string                `json:"lastUpdated,omitempty"`
	Job            *ApplicationJob       `json:"job,omitempty"`
	Candidate      *ApplicationCandidate `json:"candidate,omitempty"`
	Message        string                `json:"message,omitempty"`
}

/*
====================================
PROFILES
====================================
*/

// CandidateProfileInput is the body of the candidate profile upsert.
type CandidateProfileInput struct {
	FullName          string   `json:"fullName"`
	Phone             string   `json:"phone,omitempty"`
	Skills            []string `json:"skills"`
	ExperienceYears   *int     `json:"experienceYears,omitempty"`
	Education         string   `json:"education"`
	ResumeURL         string   `json:"resumeUrl,omitempty"`
	ProfilePictureURL string   `json:"profilePictureUrl,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	LinkedinURL       string   `json:"linkedinUrl,omitempty"`
	GithubURL         string   `json:"githubUrl,omitempty"`
	PortfolioURL      string   `json:"portfolioUrl,omitempty"`
	Location          string   `json:"location,omitempty"`
}

// CandidateProfile is a candidate's profile.
type CandidateProfile struct {
	ID                int64    `json:"id"`
	UserID            int64    `json:"userId"`
	Email             string   `json:"email"`
	FullName          string   `json:"fullName"`
	Phone             string   `json:"phone,omitempty"`
	Skills            []string `json:"skills"`
	ExperienceYears   *int     `json:"experienceYears,omitempty"`
	Education         string   `json:"education"`
	Bio               string   `json:"bio,omitempty"`
	ResumeURL         string   `json:"resumeUrl,omitempty"`
	ProfilePictureURL string   `json:"profilePictureUrl,omitempty"`
	LinkedinURL       string   `json:"linkedinUrl,omitempty"`
	GithubURL         string   `json:"githubUrl,omitempty"`
	PortfolioURL      string   `json:"portfolioUrl,omitempty"`
	Location          string   `json:"location,omitempty"`
	IsProfileComplete bool     `json:"isProfileComplete"`
}

// RecruiterProfileInput is the body of the recruiter profile upsert.
type RecruiterProfileInput struct {
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	Phone              string `json:"phone,omitempty"`
	CompanyLogoURL     string `json:"companyLogoUrl,omitempty"`
	CompanyWebsite     string `json:"companyWebsite,omitempty"`
	CompanySize        string `json:"companySize"`
	Industry           string `json:"industry,omitempty"`
	Location           string `json:"location,omitempty"`
}

// RecruiterProfile is a recruiter's company profile.
type RecruiterProfile struct {
	ID                 int64  `json:"id"`
	UserID             int64  `json:"userId"`
	Email              string `json:"email"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyLogoURL     string `json:"companyLogoUrl,omitempty"`
	Phone              string `json:"phone,omitempty"`
	CompanyWebsite     string `json:"companyWebsite,omitempty"`
	CompanySize        string `json:"companySize"`
	Industry           string `json:"industry,omitempty"`
	Location           string `json:"location,omitempty"`
	IsProfileComplete  bool   `json:"isProfileComplete"`
	Message            string `json:"message,omitempty"`
}

// LocalTime is a timestamp without zone, encoded as 2006-01-02T15:04:05.
type LocalTime struct {
	time.Time
}

const localTimeLayout = "2006-01-02T15:04:05"

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(localTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: localTimeLayout, Value: s}
	}
	parsed, err := time.Parse(localTimeLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
