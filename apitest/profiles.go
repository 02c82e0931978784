package apitest

import "net/http"

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request, p principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prof, ok := s.candidates[p.user.ID]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, candidateView(p.user, prof))
}

func (s *Server) handleSaveCandidate(w http.ResponseWriter, r *http.Request, p principal) {
	var body candidateProfile
	if err := decode(r, &body); err != nil || body.FullName == "" {
		writeError(w, r, http.StatusBadRequest, "Full name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[p.user.ID] = body
	writeJSON(w, http.StatusOK, candidateView(p.user, body))
}

func (s *Server) handleGetRecruiter(w http.ResponseWriter, r *http.Request, p principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prof, ok := s.recruiters[p.user.ID]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, recruiterView(p.user, prof))
}

func (s *Server) handleSaveRecruiter(w http.ResponseWriter, r *http.Request, p principal) {
	var body recruiterProfile
	if err := decode(r, &body); err != nil || body.CompanyName == "" {
		writeError(w, r, http.StatusBadRequest, "Company name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recruiters[p.user.ID] = body
	v := recruiterView(p.user, body)
	v["message"] = "Profile saved successfully"
	writeJSON(w, http.StatusOK, v)
}

func candidateView(u *user, p candidateProfile) map[string]any {
	v := map[string]any{
		"id":                u.ID,
		"userId":            u.ID,
		"email":             u.Email,
		"fullName":          p.FullName,
		"phone":             p.Phone,
		"skills":            p.Skills,
		"education":         p.Education,
		"bio":               p.Bio,
		"resumeUrl":         p.ResumeURL,
		"profilePictureUrl": p.ProfilePictureURL,
		"linkedinUrl":       p.LinkedinURL,
		"githubUrl":         p.GithubURL,
		"portfolioUrl":      p.PortfolioURL,
		"location":          p.Location,
		"isProfileComplete": p.FullName != "" && p.Education != "" && len(p.Skills) > 0,
	}
	if p.ExperienceYears != nil {
		v["experienceYears"] = *p.ExperienceYears
	}
	return v
}

func recruiterView(u *user, p recruiterProfile) map[string]any {
	return map[string]any{
		"id":                 u.ID,
		"userId":             u.ID,
		"email":              u.Email,
		"companyName":        p.CompanyName,
		"companyDescription": p.CompanyDescription,
		"companyLogoUrl":     p.CompanyLogoURL,
		"phone":              p.Phone,
		"companyWebsite":     p.CompanyWebsite,
		"companySize":        p.CompanySize,
		"industry":           p.Industry,
		"location":           p.Location,
		"isProfileComplete":  p.CompanyName != "" && p.CompanyDescription != "",
	}
}
