package generate

import (
	"fmt"
	"strings"

	"quizlink/internal/domain"
)

// topicBucket pairs a keyword predicate with its hand-authored question set.
// Buckets are checked in order; the first match wins.
type topicBucket struct {
	match     func(topic string) bool
	questions func(topic string) []domain.GeneratedQuestion
}

func containsAny(topic string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(topic, kw) {
			return true
		}
	}
	return false
}

var buckets = []topicBucket{
	{
		match: func(t string) bool { return containsAny(t, "javascript", "js") },
		questions: func(string) []domain.GeneratedQuestion {
			return []domain.GeneratedQuestion{
				{
					Question:      "What is the correct way to declare a variable in JavaScript?",
					Type:          domain.MultipleChoice,
					Options:       []string{"var myVar = 5;", "variable myVar = 5;", "v myVar = 5;", "declare myVar = 5;"},
					CorrectAnswer: "var myVar = 5;",
				},
				{
					Question:      "JavaScript is a compiled language.",
					Type:          domain.TrueFalse,
					Options:       []string{"True", "False"},
					CorrectAnswer: "False",
				},
				{
					Question:      "Which method is used to add an element to the end of an array?",
					Type:          domain.MultipleChoice,
					Options:       []string{"push()", "add()", "append()", "insert()"},
					CorrectAnswer: "push()",
				},
			}
		},
	},
	{
		match: func(t string) bool { return strings.Contains(t, "python") },
		questions: func(string) []domain.GeneratedQuestion {
			return []domain.GeneratedQuestion{
				{
					Question:      "What is the correct file extension for Python files?",
					Type:          domain.MultipleChoice,
					Options:       []string{".py", ".python", ".pt", ".pyt"},
					CorrectAnswer: ".py",
				},
				{
					Question:      "Python is case-sensitive.",
					Type:          domain.TrueFalse,
					Options:       []string{"True", "False"},
					CorrectAnswer: "True",
				},
				{
					Question:      "Which function is used to display output in Python?",
					Type:          domain.MultipleChoice,
					Options:       []string{"print()", "echo()", "display()", "show()"},
					CorrectAnswer: "print()",
				},
			}
		},
	},
	{
		match: func(t string) bool { return strings.Contains(t, "history") },
		questions: func(string) []domain.GeneratedQuestion {
			return []domain.GeneratedQuestion{
				{
					Question:      "World War II ended in which year?",
					Type:          domain.MultipleChoice,
					Options:       []string{"1944", "1945", "1946", "1947"},
					CorrectAnswer: "1945",
				},
				{
					Question:      "The Great Wall of China was built to keep out invaders.",
					Type:          domain.TrueFalse,
					Options:       []string{"True", "False"},
					CorrectAnswer: "True",
				},
				{
					Question:      "Who was the first person to walk on the moon?",
					Type:          domain.MultipleChoice,
					Options:       []string{"Neil Armstrong", "Buzz Aldrin", "John Glenn", "Alan Shepard"},
					CorrectAnswer: "Neil Armstrong",
				},
			}
		},
	},
	{
		match: func(t string) bool { return containsAny(t, "science", "physics", "chemistry") },
		questions: func(string) []domain.GeneratedQuestion {
			return []domain.GeneratedQuestion{
				{
					Question:      "What is the chemical symbol for water?",
					Type:          domain.MultipleChoice,
					Options:       []string{"H2O", "HO2", "H3O", "OH2"},
					CorrectAnswer: "H2O",
				},
				{
					Question:      "Light travels faster than sound.",
					Type:          domain.TrueFalse,
					Options:       []string{"True", "False"},
					CorrectAnswer: "True",
				},
				{
					Question:      "How many planets are in our solar system?",
					Type:          domain.MultipleChoice,
					Options:       []string{"7", "8", "9", "10"},
					CorrectAnswer: "8",
				},
			}
		},
	},
}

// genericQuestions is the default bucket for topics with no keyword match.
func genericQuestions(topic string) []domain.GeneratedQuestion {
	return []domain.GeneratedQuestion{
		{
			Question:      fmt.Sprintf("What is a fundamental concept in %s?", topic),
			Type:          domain.MultipleChoice,
			Options:       []string{"Basic principles", "Advanced theories", "Historical context", "Future applications"},
			CorrectAnswer: "Basic principles",
		},
		{
			Question:      fmt.Sprintf("Is %s considered an important field of study?", topic),
			Type:          domain.TrueFalse,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
		},
		{
			Question:      fmt.Sprintf("Which approach is commonly used in %s?", topic),
			Type:          domain.MultipleChoice,
			Options:       []string{"Systematic methodology", "Random approach", "Intuitive guessing", "Avoiding the subject"},
			CorrectAnswer: "Systematic methodology",
		},
		{
			Question:      fmt.Sprintf("Does %s require continuous learning and practice?", topic),
			Type:          domain.TrueFalse,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
		},
		{
			Question:      fmt.Sprintf("What is the best way to master %s?", topic),
			Type:          domain.MultipleChoice,
			Options:       []string{"Regular practice and study", "Memorizing facts only", "Avoiding difficult concepts", "Relying on luck"},
			CorrectAnswer: "Regular practice and study",
		},
	}
}

// crossTopicQuestions are appended after the bucket set for every topic so
// that even obscure topics have enough material.
func crossTopicQuestions(topic string) []domain.GeneratedQuestion {
	return []domain.GeneratedQuestion{
		{
			Question:      fmt.Sprintf("Which of the following is most important when learning %s?", topic),
			Type:          domain.MultipleChoice,
			Options:       []string{"Practice and repetition", "Memorizing definitions", "Reading only", "Avoiding challenges"},
			CorrectAnswer: "Practice and repetition",
		},
		{
			Question:      fmt.Sprintf("%s concepts can be applied in real-world scenarios.", topic),
			Type:          domain.TrueFalse,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
		},
		{
			Question:      fmt.Sprintf("What is the best resource for learning %s?", topic),
			Type:          domain.MultipleChoice,
			Options:       []string{"Multiple sources and practice", "Single textbook only", "Videos only", "Theory without practice"},
			CorrectAnswer: "Multiple sources and practice",
		},
	}
}

// Fallback deterministically builds topic-aware questions with no I/O: the
// first matching keyword bucket (or the generic set) followed by the
// cross-topic templates, truncated to min(count, available). Same input, same
// output.
func Fallback(topic string, count int) []domain.GeneratedQuestion {
	if count < 1 {
		count = 1
	}

	lower := strings.ToLower(topic)
	var pool []domain.GeneratedQuestion
	matched := false
	for _, b := range buckets {
		if b.match(lower) {
			pool = b.questions(topic)
			matched = true
			break
		}
	}
	if !matched {
		pool = genericQuestions(topic)
	}
	pool = append(pool, crossTopicQuestions(topic)...)

	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
