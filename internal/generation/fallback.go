package generation

import "github.com/learnloop/learnloop-api/internal/domain"

// Deterministic fallback documents, returned whenever generation fails for
// any reason. They mention the requested subject and tell the user that AI
// generation is unavailable, so the UI can always render something useful.
// Fallback documents are never cached: a later request retries generation.

// fallbackRoadmap builds the hard-coded roadmap template for a role.
func fallbackRoadmap(role string) *domain.CurriculumDocument {
	return &domain.CurriculumDocument{
		Title: role + " Roadmap",
		Description: "AI generation is currently unavailable, so this is a generic " +
			"starting plan for " + role + ". Try again later for a personalized roadmap.",
		Sections: []domain.Section{
			{
				ID:      "basics",
				Label:   "Fundamentals",
				Summary: "Build a foundation before specializing.",
				Items: []domain.Item{
					{
						ID:      "core-concepts",
						Label:   "Learn the core concepts",
						Details: "Work through an introductory resource for " + role + " end to end.",
					},
					{
						ID:        "first-project",
						Label:     "Build a small project",
						Details:   "Apply what you learned to something real, however small.",
						DependsOn: []string{"core-concepts"},
					},
				},
			},
			{
				ID:      "advanced",
				Label:   "Going deeper",
				Summary: "Broaden and sharpen your skills.",
				Items: []domain.Item{
					{
						ID:      "advanced-topics",
						Label:   "Study advanced topics",
						Details: "Pick one advanced area of " + role + " and go deep.",
					},
				},
			},
		},
	}
}

// fallbackCourse builds the hard-coded course template for a topic.
func fallbackCourse(topic string) *domain.CurriculumDocument {
	return &domain.CurriculumDocument{
		Title: topic + " Course",
		Description: "AI generation is currently unavailable, so this is a generic " +
			"course outline for " + topic + ". Try again later for a full course.",
		Sections: []domain.Section{
			{
				ID:      "basics",
				Label:   "Getting started",
				Summary: "Orientation and first steps.",
				Items: []domain.Item{
					{
						ID:      "overview",
						Label:   "Overview of " + topic,
						Details: "What the subject covers and why it matters.",
					},
					{
						ID:        "setup",
						Label:     "Set up your environment",
						Details:   "Get the tools you need to practice.",
						DependsOn: []string{"overview"},
					},
				},
			},
			{
				ID:      "core-concepts",
				Label:   "Core concepts",
				Summary: "The ideas everything else builds on.",
				Items: []domain.Item{
					{
						ID:      "essentials",
						Label:   "Essential ideas",
						Details: "Work through the essential ideas of " + topic + " with examples.",
					},
				},
			},
		},
	}
}
