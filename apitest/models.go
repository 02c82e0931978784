package apitest

import "time"

type user struct {
	ID       int64
	Email    string
	Password string
	Role     string
	Verified bool
}

type otpKey struct {
	email   string
	purpose string
}

type job struct {
	ID               int64
	RecruiterID      int64
	Title            string
	Description      string
	Requirements     string
	Responsibilities string
	Location         string
	JobType          string
	WorkMode         string
	ExperienceLevel  string
	SalaryMin        float64
	SalaryMax        float64
	Currency         string
	RequiredSkills   []string
	Status           string
	PostedDate       time.Time
	ExpiryDate       string
	ViewCount        int
}

type application struct {
	ID             int64
	JobID          int64
	CandidateID    int64
	Status         string
	CoverLetter    string
	RecruiterNotes string
	AppliedDate    time.Time
	LastUpdated    time.Time
}

type candidateProfile struct {
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

type recruiterProfile struct {
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	Phone              string `json:"phone,omitempty"`
	CompanyLogoURL     string `json:"companyLogoUrl,omitempty"`
	CompanyWebsite     string `json:"companyWebsite,omitempty"`
	CompanySize        string `json:"companySize"`
	Industry           string `json:"industry,omitempty"`
	Location           string `json:"location,omitempty"`
}

// Wire shapes.

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type otpBody struct {
	Email      string `json:"email"`
	OTPCode    string `json:"otpCode"`
	OTPPurpose string `json:"otpPurpose"`
}

type otpAck struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
	OTPSent bool   `json:"otpSent"`
	Error   string `json:"error,omitempty"`
}

type errorBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Path      string `json:"path"`
	Timestamp string `json:"timeStamp"`
}

type jobBody struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Requirements     string   `json:"requirements"`
	Responsibilities string   `json:"responsibilities"`
	Location         string   `json:"location"`
	JobType          string   `json:"jobType"`
	WorkMode         string   `json:"workMode"`
	ExpLevel         string   `json:"expLevel"`
	SalaryMin        float64  `json:"salaryMin"`
	SalaryMax        float64  `json:"salaryMax"`
	Currency         string   `json:"currency"`
	RequiredSkills   []string `json:"requiredSkills"`
	ExpiryDate       string   `json:"expiryDate"`
}

type companyView struct {
	RecruiterID    int64  `json:"recruiterId"`
	CompanyName    string `json:"companyName"`
	CompanyLogoURL string `json:"companyLogoUrl,omitempty"`
	Location       string `json:"location,omitempty"`
}

type jobView struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Requirements     string       `json:"requirements,omitempty"`
	Responsibilities string       `json:"responsibilities,omitempty"`
	Location         string       `json:"location"`
	JobType          string       `json:"jobType"`
	WorkMode         string       `json:"workMode"`
	ExperienceLevel  string       `json:"experienceLevel"`
	SalaryMin        float64      `json:"salaryMin,omitempty"`
	SalaryMax        float64      `json:"salaryMax,omitempty"`
	Currency         string       `json:"currency,omitempty"`
	SalaryRange      string       `json:"salaryRange,omitempty"`
	RequiredSkills   []string     `json:"requiredSkills"`
	Status           string       `json:"status"`
	PostedDate       string       `json:"postedDate"`
	ExpiryDate       string       `json:"expiryDate,omitempty"`
	ViewCount        int          `json:"viewCount"`
	ApplicationCount int          `json:"applicationCount"`
	Company          *companyView `json:"company,omitempty"`
	Message          string       `json:"message,omitempty"`
}

type applyBody struct {
	JobID       int64  `json:"jobId"`
	CoverLetter string `json:"coverLetter"`
}

type statusBody struct {
	Status         string `json:"status"`
	RecruiterNotes string `json:"recruiterNotes"`
}

type appJobView struct {
	JobID       int64  `json:"jobId"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	JobType     string `json:"jobType,omitempty"`
}

type appCandidateView struct {
	CandidateID     int64  `json:"candidateId"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	ResumeURL       string `json:"resumeUrl,omitempty"`
	ExperienceYears int    `json:"experienceYears"`
	Location        string `json:"location,omitempty"`
}

type applicationView struct {
	ID             int64             `json:"id"`
	Status         string            `json:"status"`
	CoverLetter    string            `json:"coverLetter,omitempty"`
	RecruiterNotes string            `json:"recruiterNotes,omitempty"`
	AppliedDate    string            `json:"appliedDate"`
	LastUpdated    string            `json:"lastUpdated"`
	Job            *appJobView       `json:"job,omitempty"`
	Candidate      *appCandidateView `json:"candidate,omitempty"`
	Message        string            `json:"message,omitempty"`
}

type page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

func paginate[T any](items []T, number, size int) page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if number < 0 {
		number = 0
	}
	total := len(items)
	pages := (total + size - 1) / size
	start := number * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]T, 0, end-start)
	content = append(content, items[start:end]...)
	return page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    pages,
		Number:        number,
		Size:          size,
		First:         number == 0,
		Last:          number >= pages-1,
	}
}
