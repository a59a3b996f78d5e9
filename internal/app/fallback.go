package app

import "quiz-attempt-service/internal/domain"

// FallbackQuizzes is the fixed quiz set substituted when the remote question
// bank is unreachable or returns unusable data. Listing quizzes never surfaces
// a hard error to the caller; it degrades to this set instead.
func FallbackQuizzes() []domain.Quiz {
	quizzes := []domain.Quiz{
		{
			ID:          "fallback-web-basics",
			Title:       "Web Fundamentals",
			Description: "Core concepts behind the pages you browse every day.",
			Questions: []domain.Question{
				{
					ID:     "wb-1",
					Prompt: "What does HTML stand for?",
					Options: []string{
						"Hyper Text Markup Language",
						"High Tech Modern Language",
						"Hyperlink and Text Markup Language",
						"Home Tool Markup Language",
					},
					CorrectAnswer: "Hyper Text Markup Language",
					Points:        1,
				},
				{
					ID:            "wb-2",
					Prompt:        "Which protocol does a browser use to fetch a web page?",
					Options:       []string{"FTP", "HTTP", "SMTP", "SSH"},
					CorrectAnswer: "HTTP",
					Points:        1,
				},
				{
					ID:            "wb-3",
					Prompt:        "Which language runs natively in the browser?",
					Options:       []string{"Python", "JavaScript", "C++", "Java"},
					CorrectAnswer: "JavaScript",
					Points:        2,
				},
			},
		},
		{
			ID:          "fallback-cs-basics",
			Title:       "Computer Science Basics",
			Description: "A short check of foundational computer science terms.",
			Questions: []domain.Question{
				{
					ID:     "cs-1",
					Prompt: "What does CPU stand for?",
					Options: []string{
						"Central Processing Unit",
						"Computer Personal Unit",
						"Central Program Utility",
					},
					CorrectAnswer: "Central Processing Unit",
					Points:        1,
				},
				{
					ID:            "cs-2",
					Prompt:        "How many bits are in one byte?",
					Options:       []string{"4", "8", "16", "32"},
					CorrectAnswer: "8",
					Points:        1,
				},
			},
		},
	}

	for i := range quizzes {
		quizzes[i] = domain.Normalize(quizzes[i])
	}
	return quizzes
}
