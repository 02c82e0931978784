package apitest

import (
	"net/http"
	"slices"
	"strings"
)

var applicationStatuses = []string{"APPLIED", "UNDER_REVIEW", "SHORTLISTED", "INTERVIEW", "OFFERED", "REJECTED"}

func (s *Server) applicationViewLocked(a *application) applicationView {
	v := applicationView{
		ID:             a.ID,
		Status:         a.Status,
		CoverLetter:    a.CoverLetter,
		RecruiterNotes: a.RecruiterNotes,
		AppliedDate:    s.timestamp(a.AppliedDate),
		LastUpdated:    s.timestamp(a.LastUpdated),
	}
	if j, ok := s.jobs[a.JobID]; ok {
		v.Job = &appJobView{
			JobID:       j.ID,
			CompanyName: s.recruiters[j.RecruiterID].CompanyName,
			Title:       j.Title,
			Location:    j.Location,
			JobType:     j.JobType,
		}
	}
	c := &appCandidateView{CandidateID: a.CandidateID}
	for _, u := range s.users {
		if u.ID == a.CandidateID {
			c.Email = u.Email
			break
		}
	}
	if p, ok := s.candidates[a.CandidateID]; ok {
		c.FullName = p.FullName
		c.Phone = p.Phone
		c.ResumeURL = p.ResumeURL
		c.Location = p.Location
		if p.ExperienceYears != nil {
			c.ExperienceYears = *p.ExperienceYears
		}
	}
	v.Candidate = c
	return v
}

func (s *Server) sortedApplicationsLocked(keep func(*application) bool) []applicationView {
	var out []*application
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b *application) int { return int(b.ID - a.ID) })
	views := make([]applicationView, 0, len(out))
	for _, a := range out {
		views = append(views, s.applicationViewLocked(a))
	}
	return views
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request, p principal) {
	var body applyBody
	if err := decode(r, &body); err != nil || body.JobID <= 0 {
		writeError(w, r, http.StatusBadRequest, "Job id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[body.JobID]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Job not found")
		return
	}
	if j.Status != "ACTIVE" {
		writeError(w, r, http.StatusBadRequest, "Job is no longer accepting applications")
		return
	}
	for _, a := range s.apps {
		if a.JobID == j.ID && a.CandidateID == p.user.ID {
			writeError(w, r, http.StatusConflict, "You have already applied to this job")
			return
		}
	}
	now := s.now()
	a := &application{
		ID:          s.idLocked(),
		JobID:       j.ID,
		CandidateID: p.user.ID,
		Status:      "APPLIED",
		CoverLetter: body.CoverLetter,
		AppliedDate: now,
		LastUpdated: now,
	}
	s.apps[a.ID] = a

	v := s.applicationViewLocked(a)
	v.Message = "Application submitted successfully"
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request, p principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.sortedApplicationsLocked(func(a *application) bool { return a.CandidateID == p.user.ID })
	writeJSON(w, http.StatusOK, paginate(views, queryInt(r, "page", 0), queryInt(r, "size", DefaultPageSize)))
}

func (s *Server) handleJobApplications(w http.ResponseWriter, r *http.Request, p principal) {
	status := strings.ToUpper(r.URL.Query().Get("status"))

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.ownedJobLocked(w, r, p)
	if !ok {
		return
	}
	views := s.sortedApplicationsLocked(func(a *application) bool {
		return a.JobID == j.ID && (status == "" || a.Status == status)
	})
	writeJSON(w, http.StatusOK, paginate(views, queryInt(r, "page", 0), queryInt(r, "size", DefaultPageSize)))
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request, p principal) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid application id")
		return
	}
	var body statusBody
	if err := decode(r, &body); err != nil || !slices.Contains(applicationStatuses, body.Status) {
		writeError(w, r, http.StatusBadRequest, "Invalid application status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Application not found")
		return
	}
	if j, ok := s.jobs[a.JobID]; !ok || j.RecruiterID != p.user.ID {
		writeError(w, r, http.StatusForbidden, "You can only manage applications to your own jobs")
		return
	}
	a.Status = body.Status
	a.RecruiterNotes = body.RecruiterNotes
	a.LastUpdated = s.now()

	v := s.applicationViewLocked(a)
	v.Message = "Application status updated"
	writeJSON(w, http.StatusOK, v)
}
