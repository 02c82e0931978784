package apitest

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func queryFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v
}

func (s *Server) jobViewLocked(j *job) jobView {
	v := jobView{
		ID:               j.ID,
		Title:            j.Title,
		Description:      j.Description,
		Requirements:     j.Requirements,
		Responsibilities: j.Responsibilities,
		Location:         j.Location,
		JobType:          j.JobType,
		WorkMode:         j.WorkMode,
		ExperienceLevel:  j.ExperienceLevel,
		SalaryMin:        j.SalaryMin,
		SalaryMax:        j.SalaryMax,
		Currency:         j.Currency,
		RequiredSkills:   append([]string{}, j.RequiredSkills...),
		Status:           j.Status,
		PostedDate:       s.timestamp(j.PostedDate),
		ExpiryDate:       j.ExpiryDate,
		ViewCount:        j.ViewCount,
	}
	if j.SalaryMin > 0 && j.SalaryMax > 0 {
		v.SalaryRange = fmt.Sprintf("%.0f - %.0f %s", j.SalaryMin, j.SalaryMax, j.Currency)
	}
	for _, a := range s.apps {
		if a.JobID == j.ID {
			v.ApplicationCount++
		}
	}
	company := &companyView{RecruiterID: j.RecruiterID}
	if p, ok := s.recruiters[j.RecruiterID]; ok {
		company.CompanyName = p.CompanyName
		company.CompanyLogoURL = p.CompanyLogoURL
		company.Location = p.Location
	}
	v.Company = company
	return v
}

func (s *Server) sortedJobsLocked(keep func(*job) bool) []jobView {
	var out []*job
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b *job) int {
		if c := b.PostedDate.Compare(a.PostedDate); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	views := make([]jobView, 0, len(out))
	for _, j := range out {
		views = append(views, s.jobViewLocked(j))
	}
	return views
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := q.Get("keyword")
	location := q.Get("location")
	level := q.Get("experienceLevel")
	jobType := q.Get("jobType")
	minSalary := queryFloat(r, "minSalary")
	maxSalary := queryFloat(r, "maxSalary")
	var from, to time.Time
	if v := q.Get("dateFrom"); v != "" {
		from, _ = time.Parse(timestampLayout, v)
	}
	if v := q.Get("dateTo"); v != "" {
		to, _ = time.Parse(timestampLayout, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.sortedJobsLocked(func(j *job) bool {
		switch {
		case j.Status != "ACTIVE":
			return false
		case keyword != "" && !containsFold(j.Title, keyword) && !containsFold(j.Description, keyword):
			return false
		case location != "" && !containsFold(j.Location, location):
			return false
		case level != "" && j.ExperienceLevel != level:
			return false
		case jobType != "" && j.JobType != jobType:
			return false
		case minSalary > 0 && j.SalaryMax > 0 && j.SalaryMax < minSalary:
			return false
		case maxSalary > 0 && j.SalaryMin > maxSalary:
			return false
		case !from.IsZero() && j.PostedDate.Before(from):
			return false
		case !to.IsZero() && j.PostedDate.After(to):
			return false
		}
		return true
	})
	writeJSON(w, http.StatusOK, paginate(views, queryInt(r, "page", 0), queryInt(r, "size", DefaultPageSize)))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid job id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Job not found")
		return
	}
	j.ViewCount++
	writeJSON(w, http.StatusOK, s.jobViewLocked(j))
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request, p principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.sortedJobsLocked(func(j *job) bool { return j.RecruiterID == p.user.ID })
	writeJSON(w, http.StatusOK, paginate(views, queryInt(r, "page", 0), DefaultPageSize))
}

func validJob(b jobBody) string {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return "Title is required"
	case strings.TrimSpace(b.Description) == "":
		return "Description is required"
	case b.SalaryMin > 0 && b.SalaryMax > 0 && b.SalaryMax < b.SalaryMin:
		return "Maximum salary must not be below minimum salary"
	}
	return ""
}

func applyJobBody(j *job, b jobBody) {
	j.Title = b.Title
	j.Description = b.Description
	j.Requirements = b.Requirements
	j.Responsibilities = b.Responsibilities
	j.Location = b.Location
	j.JobType = b.JobType
	j.WorkMode = b.WorkMode
	j.ExperienceLevel = b.ExpLevel
	j.SalaryMin = b.SalaryMin
	j.SalaryMax = b.SalaryMax
	j.Currency = b.Currency
	if j.Currency == "" {
		j.Currency = "INR"
	}
	j.RequiredSkills = append([]string{}, b.RequiredSkills...)
	j.ExpiryDate = b.ExpiryDate
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request, p principal) {
	var body jobBody
	if err := decode(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request")
		return
	}
	if msg := validJob(body); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recruiters[p.user.ID]; !ok {
		writeError(w, r, http.StatusNotFound, "Recruiter profile not found")
		return
	}
	j := &job{ID: s.idLocked(), RecruiterID: p.user.ID, Status: "ACTIVE", PostedDate: s.now()}
	applyJobBody(j, body)
	s.jobs[j.ID] = j

	v := s.jobViewLocked(j)
	v.Message = "Job created successfully"
	writeJSON(w, http.StatusCreated, v)
}

// ownedJobLocked resolves a job the caller owns, writing the error response otherwise.
func (s *Server) ownedJobLocked(w http.ResponseWriter, r *http.Request, p principal) (*job, bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid job id")
		return nil, false
	}
	j, ok := s.jobs[id]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Job not found")
		return nil, false
	}
	if j.RecruiterID != p.user.ID {
		writeError(w, r, http.StatusForbidden, "You can only manage your own jobs")
		return nil, false
	}
	return j, true
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request, p principal) {
	var body jobBody
	if err := decode(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request")
		return
	}
	if msg := validJob(body); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.ownedJobLocked(w, r, p)
	if !ok {
		return
	}
	applyJobBody(j, body)
	v := s.jobViewLocked(j)
	v.Message = "Job updated successfully"
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, p principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.ownedJobLocked(w, r, p)
	if !ok {
		return
	}
	delete(s.jobs, j.ID)
	for id, a := range s.apps {
		if a.JobID == j.ID {
			delete(s.apps, id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Job deleted successfully"})
}

func (s *Server) handleCloseJob(w http.ResponseWriter, r *http.Request, p principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.ownedJobLocked(w, r, p)
	if !ok {
		return
	}
	j.Status = "CLOSED"
	v := s.jobViewLocked(j)
	v.Message = "Job closed successfully"
	writeJSON(w, http.StatusOK, v)
}
