package models

import "time"

// SeedMessages returns the demo conversation, timestamped relative to now.
func SeedMessages(now time.Time) []*Message {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	return []*Message{
		{
			ID: "1", Sender: "Alex Turner", Avatar: "AT", Channel: "general",
			Content:   "Hey team! Hope everyone had a great weekend.",
			CreatedAt: ago(8 * time.Hour),
		},
		{
			ID: "2", Sender: "Sarah Chen", Avatar: "SC", Channel: "general",
			Content:   "We need to finish the API documentation by Wednesday.",
			CreatedAt: ago(7 * time.Hour),
			Intelligence: &Intelligence{
				Task: &TaskDetection{Detected: true, Title: "Finish the API documentation", DueDate: "Wednesday"},
			},
		},
		{
			ID: "3", Sender: "Mike Ross", Avatar: "MR", Channel: "general",
			Content:   "@Sarah can you review my pull request when you get a chance?",
			CreatedAt: ago(6 * time.Hour),
			Intelligence: &Intelligence{
				FollowUp: &FollowUpDetection{
					Detected:       true,
					Question:       "Can you review my pull request?",
					DirectedAt:     "Sarah",
					SuggestedReply: "Sure, I will review your PR this afternoon and leave comments.",
				},
			},
		},
		{
			ID: "4", Sender: "Alex Turner", Avatar: "AT", Channel: "general",
			Content:   "After discussing the options, we decided to go with PostgreSQL for the new service.",
			CreatedAt: ago(5 * time.Hour),
			Intelligence: &Intelligence{
				Decision: &DecisionDetection{
					Detected: true,
					Summary:  "Go with PostgreSQL for the new service",
					MadeBy:   "Alex Turner",
					Context:  "After evaluating MongoDB and PostgreSQL, team agreed PostgreSQL fits better with existing infrastructure.",
				},
			},
		},
		{
			ID: "5", Sender: "Sarah Chen", Avatar: "SC", Channel: "general",
			Content:   "Let's sync tomorrow at 2pm to discuss the sprint priorities. @Alex @Mike",
			CreatedAt: ago(4 * time.Hour),
			Intelligence: &Intelligence{
				Meeting: &MeetingDetection{
					Detected:     true,
					Topic:        "Sprint priorities discussion",
					Time:         "Tomorrow at 2pm",
					Participants: "Sarah, Alex, Mike",
					SuggestedAgenda: "1. Review completed items from current sprint\n" +
						"2. Discuss blockers and dependencies\n" +
						"3. Prioritize backlog for next sprint\n" +
						"4. Assign ownership for top items",
				},
			},
		},
		{
			ID: "6", Sender: "Mike Ross", Avatar: "MR", Channel: "engineering",
			Content:   "Deployed the latest build to staging. All tests passing.",
			CreatedAt: ago(2 * time.Hour),
		},
		{
			ID: "7", Sender: "Alex Turner", Avatar: "AT", Channel: "engineering",
			Content:   "We need to migrate the database schema before Friday. @Mike can you handle this?",
			CreatedAt: ago(90 * time.Minute),
			Intelligence: &Intelligence{
				Task: &TaskDetection{Detected: true, Title: "Migrate the database schema", DueDate: "Friday", Assignee: "Mike"},
				FollowUp: &FollowUpDetection{
					Detected:       true,
					Question:       "Can you handle the database migration?",
					DirectedAt:     "Mike",
					SuggestedReply: "Yes, I can start on the migration tomorrow. Will have it done by Thursday.",
				},
			},
		},
		{
			ID: "8", Sender: "Sarah Chen", Avatar: "SC", Channel: "design",
			Content:   "We approved the new color palette. Let's go with the warm amber tones across all components.",
			CreatedAt: ago(100 * time.Minute),
			Intelligence: &Intelligence{
				Decision: &DecisionDetection{
					Detected: true,
					Summary:  "Approved warm amber tone color palette for all components",
					MadeBy:   "Sarah Chen",
					Context:  "Team reviewed multiple palette options and selected warm amber tones for brand consistency.",
				},
			},
		},
		{
			ID: "9", Sender: "Alex Turner", Avatar: "AT", Channel: "design",
			Content:   "Let's schedule a design review meeting on Monday at 10am. Everyone from the design team should join.",
			CreatedAt: ago(80 * time.Minute),
			Intelligence: &Intelligence{
				Meeting: &MeetingDetection{
					Detected:     true,
					Topic:        "Design review",
					Time:         "Monday at 10am",
					Participants: "Design team",
					SuggestedAgenda: "1. Review updated color palette implementation\n" +
						"2. Discuss component library updates\n" +
						"3. Review responsive design specs",
				},
			},
		},
	}
}
