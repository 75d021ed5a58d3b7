package service

import (
	"strings"
	"unicode/utf8"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/response"
)

const (
	minProjectNameLength = 2
	minStoryLength       = 10
)

// validateProjectDetails trims the details and applies the setup form rules
func validateProjectDetails(details domain.ProjectDetails) (domain.ProjectDetails, error) {
	details.ProjectName = strings.TrimSpace(details.ProjectName)
	details.TeamMembers = strings.TrimSpace(details.TeamMembers)

	if utf8.RuneCountInString(details.ProjectName) < minProjectNameLength {
		return domain.ProjectDetails{}, response.NewInvalidInputError("Project name must be at least 2 characters", details.ProjectName)
	}
	if len(details.TeamMemberList()) == 0 {
		return domain.ProjectDetails{}, response.NewInvalidInputError("At least one team member is required", "")
	}
	if details.DurationWeeks < 1 {
		return domain.ProjectDetails{}, response.NewInvalidInputError("Duration must be at least 1 week", "")
	}
	return details, nil
}

// validateStories trims every story and applies the story review rules
func validateStories(stories []string) ([]string, error) {
	if len(stories) == 0 {
		return nil, response.NewInvalidInputError("At least one user story is required", "")
	}
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < minStoryLength {
			return nil, response.NewInvalidInputError("Each user story must be at least 10 characters", s)
		}
		out = append(out, s)
	}
	return out, nil
}
