package format

// Display labels keyed by backend enum code.
var (
	JobTypes = map[string]string{
		"FULL_TIME":  "Full Time",
		"PART_TIME":  "Part Time",
		"CONTRACT":   "Contract",
		"INTERNSHIP": "Internship",
	}

	WorkModes = map[string]string{
		"ONSITE": "Onsite",
		"REMOTE": "Remote",
		"HYBRID": "Hybrid",
	}

	ExperienceLevels = map[string]string{
		"ENTRY":  "Entry Level",
		"JUNIOR": "Junior",
		"MID":    "Mid Level",
		"SENIOR": "Senior",
		"LEAD":   "Lead",
	}

	ApplicationStatuses = map[string]string{
		"APPLIED":      "Applied",
		"UNDER_REVIEW": "Under Review",
		"SHORTLISTED":  "Shortlisted",
		"INTERVIEW":    "Interview",
		"OFFERED":      "Offered",
		"REJECTED":     "Rejected",
	}
)

// CompanySizes lists the headcount buckets in ascending order.
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}

// Label returns labels[code], or code itself when it has no label.
func Label(labels map[string]string, code string) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return code
}

func JobType(code string) string         { return Label(JobTypes, code) }
func WorkMode(code string) string        { return Label(WorkModes, code) }
func ExperienceLevel(code string) string { return Label(ExperienceLevels, code) }

// ApplicationStatus returns the label of an application status code.
func ApplicationStatus(code string) string { return Label(ApplicationStatuses, code) }

// Codes returns the keys of labels. Order is unspecified.
func Codes(labels map[string]string) []string {
	out := make([]string, 0, len(labels))
	for k := range labels {
		out = append(out, k)
	}
	return out
}
