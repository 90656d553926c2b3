package generator

import (
	"fmt"

	"github.com/skillforge/backend/internal/models"
)

func QuestionSystemPrompt() string {
	return `You are a question writer for a gamified learning platform. Students fight
through a "dungeon" of quiz rooms; each room is one question testing one named skill.

You produce strict JSON only. No markdown, no commentary, no code fences.

Output schema:
{"questions":[{"skill":"...","question_text":"...","correct_answer":"...","wrong_answers":["...","...","..."],"explanation":"...","hint":"..."}]}

Requirements:
- "skill" names the single concept the question tests (e.g. "Recursion", "SQL Joins")
- "correct_answer" is a short, unambiguous answer string
- "wrong_answers" contains exactly 3 plausible distractors, none equal to the correct answer
- "explanation" says why the correct answer is right in 1-3 sentences
- "hint" nudges toward the answer without giving it away
- Answers are compared by exact string match, so keep them short and canonical`
}

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "Target a student meeting the subject for the first time: definitional questions, single-step reasoning.",
	models.DifficultyMedium: "Target a student partway through a course: apply a concept to a short concrete scenario.",
	models.DifficultyHard:   "Target a student preparing for an exam or interview: multi-step reasoning, edge cases, common traps as distractors.",
}

func BuildQuestionUserPrompt(subject string, difficulty models.Difficulty, count int) string {
	return fmt.Sprintf(`Write %d %s-difficulty quiz questions on the subject %q.

%s

Cover a different skill within the subject with each question where possible.
Return the JSON object only.`, count, difficulty, subject, difficultyGuidance[difficulty])
}
